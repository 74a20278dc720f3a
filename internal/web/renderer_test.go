package web

import (
	"bytes"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/iliyamo/record-tracker/internal/model"
)

func TestRenderer_PagesUseBaseLayout(t *testing.T) {
	r, err := NewRenderer()
	require.NoError(t, err)

	for _, page := range []string{"login.html", "register.html", "home.html", "admin.html", "change_password.html"} {
		var buf bytes.Buffer
		require.NoError(t, r.Render(&buf, page, map[string]any{}, nil), page)
		assert.Contains(t, buf.String(), "<nav>", page)
	}
}

func TestRenderer_HomeListsRecords(t *testing.T) {
	r, err := NewRenderer()
	require.NoError(t, err)

	var buf bytes.Buffer
	data := map[string]any{
		"User": &model.User{Username: "alice"},
		"Records": []*model.Record{
			{ID: "r1", Date: "2024-01-01", Content: "<b>ran</b>", Status: model.StatusGreen},
		},
	}
	require.NoError(t, r.Render(&buf, "home.html", data, nil))
	out := buf.String()
	assert.Contains(t, out, "alice")
	assert.Contains(t, out, `class="status-green"`)
	assert.Contains(t, out, "&lt;b&gt;ran&lt;/b&gt;")
	assert.Contains(t, out, "Restore")

	// inline edit row prefilled with the current values
	assert.Contains(t, out, `data-edit-for="r1"`)
	assert.Contains(t, out, `value="2024-01-01"`)
	assert.Contains(t, out, `value="&lt;b&gt;ran&lt;/b&gt;"`)
	assert.Contains(t, out, `"PUT", "/api/records/"`)
}

func TestRenderer_AdminListsUsers(t *testing.T) {
	r, err := NewRenderer()
	require.NoError(t, err)

	var buf bytes.Buffer
	data := map[string]any{
		"User":  &model.User{Username: "root", IsAdmin: true},
		"Users": []model.UserSummary{{ID: "u1", Username: "bob", CreatedAt: time.Date(2024, 5, 1, 9, 30, 0, 0, time.UTC), RecordCount: 2}},
	}
	require.NoError(t, r.Render(&buf, "admin.html", data, nil))
	assert.Contains(t, buf.String(), "bob")
	assert.Contains(t, buf.String(), "2024-05-01 09:30")
}

func TestRenderer_UnknownPage(t *testing.T) {
	r, err := NewRenderer()
	require.NoError(t, err)
	assert.Error(t, r.Render(&bytes.Buffer{}, "missing.html", nil, nil))
}
