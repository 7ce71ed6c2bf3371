package llm

import (
	"fmt"
	"regexp"
	"strconv"
	"strings"

	"github.com/ppiankov/vaultgate/internal/model"
)

var percentPattern = regexp.MustCompile(`\d+(?:\.\d+)?\s?%`)

// extractPercents returns the distinct percentages quoted in text, normalized
// ("64.0%" and "64 %" both become "64%")
func extractPercents(text string) []string {
	seen := make(map[string]bool)
	var out []string
	for _, m := range percentPattern.FindAllString(text, -1) {
		p := normalizePercent(m)
		if !seen[p] {
			seen[p] = true
			out = append(out, p)
		}
	}
	return out
}

func normalizePercent(s string) string {
	num := strings.TrimSpace(strings.TrimSuffix(strings.TrimSpace(s), "%"))
	v, err := strconv.ParseFloat(num, 64)
	if err != nil {
		return s
	}
	return strconv.FormatFloat(v, 'f', -1, 64) + "%"
}

// allowedFigures collects every percentage the narrative may quote: the
// certainty of each inference, figures inside inference text, and the
// decision confidence
func allowedFigures(report model.Report, decision *model.Decision) map[string]bool {
	allowed := make(map[string]bool)
	add := func(text string) {
		for _, p := range extractPercents(text) {
			allowed[p] = true
		}
	}
	for _, inf := range report.All() {
		allowed[fmt.Sprintf("%d%%", int(inf.Confidence*100))] = true
		add(inf.CertaintyLevel())
		add(inf.Premise)
		add(inf.Observation)
		add(inf.Conclusion)
		add(inf.Actionable)
	}
	if decision != nil {
		allowed[fmt.Sprintf("%d%%", int(decision.Confidence*100))] = true
		add(decision.Rationale)
	}
	return allowed
}

// verifyGrounded rejects a narrative quoting a percentage its input lacks
func verifyGrounded(text string, req NarrateRequest) ([]string, error) {
	figures := extractPercents(text)
	allowed := allowedFigures(req.Report, req.Decision)
	for _, f := range figures {
		if !allowed[f] {
			return figures, fmt.Errorf("UNGROUNDED FIGURE: narrative quoted %s which is not in the report", f)
		}
	}
	return figures, nil
}

// finish trims the provider output and applies strict mode
func finish(text string, req NarrateRequest, strict bool) (string, []string, error) {
	text = strings.TrimSpace(text)
	if !strict {
		return text, extractPercents(text), nil
	}
	figures, err := verifyGrounded(text, req)
	if err != nil {
		return "", nil, err
	}
	return text, figures, nil
}
