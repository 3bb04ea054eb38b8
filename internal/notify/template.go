package notify

import (
	"fmt"
	"html"
	"strings"
)

// TemplateContext carries the named fields a notification template may
// reference. User-controlled names are HTML-escaped when rendering the HTML
// body; course names arrive pre-formatted from the course directory and are
// substituted as-is.
type TemplateContext struct {
	UserName        string
	UserFirstName   string
	CourseName      string
	CourseShortName string
	CourseURL       string
	SiteName        string
	DaysToAlert     int
	DaysRemaining   int
	ExpiryDate      string
	Percentage      float64
}

func (tc TemplateContext) replacements(escapeUser bool) []string {
	userName := tc.UserName
	firstName := tc.UserFirstName
	if escapeUser {
		userName = html.EscapeString(userName)
		firstName = html.EscapeString(firstName)
	}
	return []string{
		"[[user_name]]", userName,
		"[[user_firstname]]", firstName,
		"[[course_name]]", tc.CourseName,
		"[[course_shortname]]", tc.CourseShortName,
		"[[course_url]]", tc.CourseURL,
		"[[site_name]]", tc.SiteName,
		"[[days_to_alert]]", fmt.Sprintf("%d", tc.DaysToAlert),
		"[[days_remaining]]", fmt.Sprintf("%d", tc.DaysRemaining),
		"[[expiry_date]]", tc.ExpiryDate,
		"[[percentage]]", fmt.Sprintf("%.1f", tc.Percentage),
	}
}

// RenderHTML substitutes placeholders for the HTML body, escaping the
// user-controlled name fields.
func RenderHTML(tmpl string, tc TemplateContext) string {
	return strings.NewReplacer(tc.replacements(true)...).Replace(tmpl)
}

// RenderPlain substitutes placeholders without escaping and strips markup,
// producing the text/plain alternative.
func RenderPlain(tmpl string, tc TemplateContext) string {
	return StripTags(strings.NewReplacer(tc.replacements(false)...).Replace(tmpl))
}

// StripTags removes HTML tags, leaving the text content.
func StripTags(s string) string {
	var b strings.Builder
	b.Grow(len(s))
	inTag := false
	for _, r := range s {
		switch {
		case r == '<':
			inTag = true
		case r == '>':
			inTag = false
		case !inTag:
			b.WriteRune(r)
		}
	}
	return b.String()
}
