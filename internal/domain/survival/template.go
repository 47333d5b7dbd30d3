package survival

import (
	"regexp"
	"strconv"
	"strings"

	"outpost/internal/domain/content"
)

var placeholder = regexp.MustCompile(`@[A-Za-z][A-Za-z0-9_]*`)

var pronouns = map[Gender][3]string{
	GenderFemale: {"she", "her", "her"},
	GenderMale:   {"he", "his", "him"},
	GenderOther:  {"they", "their", "them"},
}

// Expand fills a log line. It knows @name, @he, @his, @him and @give, and
// any variable set by an effect hook. Unknown placeholders stay as written.
func Expand(tpl string, p *Person, vars map[string]string, give []content.Amount, cat *content.Catalog) string {
	forms, ok := pronouns[p.Gender]
	if !ok {
		forms = pronouns[GenderOther]
	}
	return placeholder.ReplaceAllStringFunc(tpl, func(tok string) string {
		key := tok[1:]
		switch key {
		case "name":
			return p.Name
		case "he":
			return forms[0]
		case "his":
			return forms[1]
		case "him":
			return forms[2]
		case "give":
			return describe(give, cat)
		}
		if v, ok := vars[key]; ok {
			return v
		}
		return tok
	})
}

func describe(list []content.Amount, cat *content.Catalog) string {
	if len(list) == 0 {
		return "nothing"
	}
	parts := make([]string, 0, len(list))
	for _, a := range list {
		parts = append(parts, strconv.FormatFloat(a.Qty, 'f', -1, 64)+" "+cat.Name(a.ID))
	}
	return strings.Join(parts, ", ")
}
