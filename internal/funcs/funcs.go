package funcs

import (
	"strings"
	"text/template"
	"time"
)

var TemplateFuncs = template.FuncMap{
	"now": func() time.Time {
		return time.Now()
	},
	"uppercase": strings.ToUpper,
	"lowercase": strings.ToLower,
}
