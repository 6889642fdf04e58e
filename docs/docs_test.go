package docs

import (
	"encoding/json"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"github.com/swaggo/swag"
)

func TestSwaggerDocument(t *testing.T) {
	raw, err := swag.ReadDoc(SwaggerInfo.InstanceName())
	require.NoError(t, err)

	var doc struct {
		Swagger string                    `json:"swagger"`
		Info    struct{ Title string }    `json:"info"`
		Paths   map[string]map[string]any `json:"paths"`
	}
	require.NoError(t, json.Unmarshal([]byte(raw), &doc))
	assert.Equal(t, "2.0", doc.Swagger)
	assert.Equal(t, "PawPals API", doc.Info.Title)

	for path, method := range map[string]string{
		"/auth/login":                       "post",
		"/nearby/friends":                   "get",
		"/nearby/friends/{targetUserID}/hi": "post",
		"/posts/{postID}/respond":           "post",
		"/posts/{postID}/accept":            "post",
		"/dogs/{dogID}/reminders":           "post",
		"/health":                           "get",
	} {
		require.Contains(t, doc.Paths, path)
		assert.Contains(t, doc.Paths[path], method, path)
	}
}
