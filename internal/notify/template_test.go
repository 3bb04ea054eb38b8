package notify

import (
	"testing"

	"github.com/stretchr/testify/assert"
)

func sampleContext() TemplateContext {
	return TemplateContext{
		UserName:        "Alice Example",
		UserFirstName:   "Alice",
		CourseName:      "Intro to <b>Go</b>",
		CourseShortName: "GO101",
		CourseURL:       "https://site.test/course/9",
		SiteName:        "Test Campus",
		DaysToAlert:     7,
		DaysRemaining:   5,
		ExpiryDate:      "12 September 2026",
		Percentage:      87.31,
	}
}

func TestRenderHTMLSubstitutesAllPlaceholders(t *testing.T) {
	tmpl := "Hi [[user_firstname]], [[course_name]] ([[course_shortname]]) ends in " +
		"[[days_remaining]] days on [[expiry_date]]. [[site_name]] will warn you " +
		"[[days_to_alert]] days ahead. Score: [[percentage]]%. Visit [[course_url]]."
	out := RenderHTML(tmpl, sampleContext())

	assert.Contains(t, out, "Hi Alice,")
	assert.Contains(t, out, "Intro to <b>Go</b> (GO101)")
	assert.Contains(t, out, "ends in 5 days on 12 September 2026")
	assert.Contains(t, out, "warn you 7 days ahead")
	assert.Contains(t, out, "Score: 87.3%")
	assert.Contains(t, out, "https://site.test/course/9")
	assert.NotContains(t, out, "[[")
}

func TestRenderHTMLEscapesUserNames(t *testing.T) {
	tc := sampleContext()
	tc.UserName = `Eve <script>alert(1)</script>`
	out := RenderHTML("Dear [[user_name]]", tc)
	assert.NotContains(t, out, "<script>")
	assert.Contains(t, out, "&lt;script&gt;")
}

func TestRenderPlainStripsMarkup(t *testing.T) {
	out := RenderPlain("<p>Hello [[user_firstname]]</p><br>Bye", sampleContext())
	assert.Equal(t, "Hello AliceBye", out)
}

func TestStripTags(t *testing.T) {
	assert.Equal(t, "plain", StripTags("plain"))
	assert.Equal(t, "ab", StripTags("<i>a</i><b>b</b>"))
	assert.Equal(t, "unclosed ", StripTags("unclosed <div"))
}
