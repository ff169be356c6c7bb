package recon

import (
	"strings"

	"github.com/sells-group/smelter-recon/internal/model"
)

// standardKeywords maps status-text substrings to the standard they imply,
// checked in order after the literal "CODE: " prefix test fails. The bare
// "rmi"/"conformant" fallbacks tag records from registries that publish a
// status without naming a template.
var standardKeywords = []struct {
	keyword  string
	standard model.Standard
}{
	{"conflict minerals", model.StandardCMRT},
	{"extended minerals", model.StandardEMRT},
	{"aluminium", model.StandardAMRT},
	{"aluminum", model.StandardAMRT},
	{"rmi", model.StandardRMI},
	{"conformant", model.StandardRMI},
}

// ExtractStandard parses a raw assessment-status string and reports which
// standard it belongs to. A literal "<CODE>: " prefix wins; otherwise the
// keyword table decides. Returns false when nothing is recognizable.
func ExtractStandard(status string) (model.Standard, bool) {
	if std, _, ok := SplitStandardPrefix(status); ok {
		return std, true
	}
	lower := strings.ToLower(status)
	for _, kw := range standardKeywords {
		if strings.Contains(lower, kw.keyword) {
			return kw.standard, true
		}
	}
	return "", false
}

// SplitStandardPrefix strips a leading "<CODE>:" from a status string,
// matching the code case-insensitively against the known standards. The
// remainder is returned trimmed.
func SplitStandardPrefix(status string) (model.Standard, string, bool) {
	trimmed := strings.TrimSpace(status)
	for _, std := range model.KnownStandards() {
		prefix := string(std) + ":"
		if len(trimmed) >= len(prefix) && strings.EqualFold(trimmed[:len(prefix)], prefix) {
			return std, strings.TrimSpace(trimmed[len(prefix):]), true
		}
	}
	return "", trimmed, false
}
