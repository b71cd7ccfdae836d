package tests

import (
	"net/http"
	"testing"

	"github.com/stretchr/testify/assert"
)

func TestStatus(t *testing.T) {
	e, cleanup := setup()
	defer cleanup()

	data := payload(t, upload(t, e, "a.txt", "text/plain", "0123456789", "2"))
	id := data["fileId"].(string)

	//

	status := payload(t, get(t, e, "/status/"+id))
	assert.Equal(t, id, status["fileId"])
	assert.Equal(t, "a.txt", status["originalName"])
	assert.EqualValues(t, 10, status["fileSize"])
	assert.Equal(t, "text/plain", status["mimeType"])
	assert.NotEmpty(t, status["uploadedAt"])
	assert.NotEmpty(t, status["expiresAt"])
	assert.Equal(t, false, status["isExpired"])
	assert.EqualValues(t, 2, status["timeRemaining"])
	assert.EqualValues(t, 0, status["downloadCount"])
	assert.Equal(t, "http://quickshare.test/download/"+id, status["downloadUrl"])
}

func TestStatusDoesNotCount(t *testing.T) {
	e, cleanup := setup()
	defer cleanup()

	data := payload(t, upload(t, e, "a.txt", "text/plain", "0123456789", "1"))
	id := data["fileId"].(string)

	for i := 0; i < 3; i++ {
		resp := get(t, e, "/status/"+id)
		resp.Body.Close()
	}

	status := payload(t, get(t, e, "/status/"+id))
	assert.EqualValues(t, 0, status["downloadCount"])
}

func TestStatusUnknown(t *testing.T) {
	e, cleanup := setup()
	defer cleanup()

	resp := get(t, e, "/status/8f1e02e1-0000-0000-0000-000000000000")
	defer resp.Body.Close()
	assert.Equal(t, http.StatusNotFound, resp.StatusCode)
}

func TestStatusExpired(t *testing.T) {
	e, cleanup := setup()
	defer cleanup()

	file := seedExpired(t, e, "expired-1")

	resp := get(t, e, "/status/"+file.ID)
	defer resp.Body.Close()
	assert.Equal(t, http.StatusGone, resp.StatusCode)
}
