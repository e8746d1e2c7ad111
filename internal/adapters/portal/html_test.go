package portal

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestExtractViewState(t *testing.T) {
	t.Parallel()

	html := `<form><input type="hidden" name="javax.faces.ViewState" id="javax.faces.ViewState" value="j_id42:state" /></form>`

	assert.Equal(t, "j_id42:state", extractViewState(html))
	assert.Empty(t, extractViewState("<html></html>"))
}

func TestExtractFormActionUnescapesAmpersands(t *testing.T) {
	t.Parallel()

	html := `<form id="kc-form-login" action="https://sso.example/auth/authenticate?session_code=abc&amp;execution=def" method="post">`

	assert.Equal(t, "https://sso.example/auth/authenticate?session_code=abc&execution=def", extractFormAction(html))
	assert.Empty(t, extractFormAction(`<form action="https://sso.example/other">`))
}

func TestExtractContextRows(t *testing.T) {
	t.Parallel()

	html := `
	<table>
	  <tr><td><a id="roleForm:roleTable:0:roleLink" href="#">Central Registry / 3rd Civil Court / Clerk</a></td></tr>
	  <tr><td><a id="roleForm:roleTable:1:roleLink" href="#"> Appeals Desk / 2nd Chamber / Clerk </a></td></tr>
	</table>`

	rows := extractContextRows(html)
	require.Len(t, rows, 2)
	assert.Equal(t, 0, rows[0].index)
	assert.Equal(t, "Central Registry / 3rd Civil Court / Clerk", rows[0].label)
	assert.Equal(t, 1, rows[1].index)
	assert.Equal(t, "Appeals Desk / 2nd Chamber / Clerk", rows[1].label)
}

func TestExtractContextRowsOnclickFallback(t *testing.T) {
	t.Parallel()

	html := `<a class="ui-commandlink" onclick="submitRole('roleForm:roleTable:3')" href="#">Night Desk / Duty Court / Clerk</a>`

	rows := extractContextRows(html)
	require.Len(t, rows, 1)
	assert.Equal(t, 3, rows[0].index)
	assert.Equal(t, "Night Desk / Duty Court / Clerk", rows[0].label)
}

func TestExtractDownloadControl(t *testing.T) {
	t.Parallel()

	tests := []struct {
		name string
		html string
		want string
	}{
		{
			name: "onclick before value",
			html: `<input type="submit" id="navbar:j_id285" onclick="startDownloadTimer();A4J.AJAX.Submit()" value="Download" />`,
			want: "navbar:j_id285",
		},
		{
			name: "value before id",
			html: `<input type="submit" value="Download" id="navbar:j_id290" onclick="startDownloadTimer()" />`,
			want: "navbar:j_id290",
		},
		{
			name: "inside download controls block",
			html: `<div id="navbar:downloadControls" class="controls">
				<span>export</span>
				<input type="submit" id="navbar:j_id300" value="Download" />
			</div>`,
			want: "navbar:j_id300",
		},
		{
			name: "known id fallback",
			html: `<script>register("navbar:j_id278")</script>`,
			want: "navbar:j_id278",
		},
		{
			name: "nothing",
			html: `<div>no controls here</div>`,
			want: "",
		},
	}

	for _, tt := range tests {
		tt := tt
		t.Run(tt.name, func(t *testing.T) {
			t.Parallel()
			assert.Equal(t, tt.want, extractDownloadControl(tt.html))
		})
	}
}

func TestExtractDirectURL(t *testing.T) {
	t.Parallel()

	html := `<span>Your file is being generated, please wait.</span>
	<a href="https://bundles.s3.us-east-1.amazonaws.com/567/0001234-55.2024-case.pdf?X-Amz-Signature=abc&amp;X-Amz-Expires=300">here</a>`

	assert.Equal(t,
		"https://bundles.s3.us-east-1.amazonaws.com/567/0001234-55.2024-case.pdf?X-Amz-Signature=abc&X-Amz-Expires=300",
		extractDirectURL(html))
	assert.Empty(t, extractDirectURL("<div>nothing</div>"))
}

func TestDirectFileName(t *testing.T) {
	t.Parallel()

	assert.Equal(t, "0001234-55.2024-case.pdf",
		directFileName("https://bundles.s3.us-east-1.amazonaws.com/567/0001234-55.2024-case.pdf?sig=1", "0001234-55.2024"))
	assert.Equal(t, "0009999-11.2023-case.pdf",
		directFileName("https://example.com/opaque", "0009999-11.2023"))
}
