package tests

import (
	"io"
	"net/http"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestDownload(t *testing.T) {
	e, cleanup := setup()
	defer cleanup()

	data := payload(t, upload(t, e, "a.txt", "text/plain", "0123456789", "1"))
	id := data["fileId"].(string)

	//

	resp := get(t, e, "/download/"+id)
	defer resp.Body.Close()
	require.Equal(t, http.StatusOK, resp.StatusCode)

	content, err := io.ReadAll(resp.Body)
	require.NoError(t, err)
	assert.Equal(t, "0123456789", string(content))

	assert.Equal(t, "text/plain", resp.Header.Get("Content-Type"))
	assert.Equal(t, `attachment; filename="a.txt"`, resp.Header.Get("Content-Disposition"))
	assert.Equal(t, "10", resp.Header.Get("Content-Length"))
}

func TestDownloadCountsEachFetch(t *testing.T) {
	e, cleanup := setup()
	defer cleanup()

	data := payload(t, upload(t, e, "a.txt", "text/plain", "0123456789", "1"))
	id := data["fileId"].(string)

	for i := 0; i < 3; i++ {
		resp := get(t, e, "/download/"+id)
		io.Copy(io.Discard, resp.Body)
		resp.Body.Close()
		require.Equal(t, http.StatusOK, resp.StatusCode)
	}

	status := payload(t, get(t, e, "/status/"+id))
	assert.EqualValues(t, 3, status["downloadCount"])
}

func TestDownloadUnknown(t *testing.T) {
	e, cleanup := setup()
	defer cleanup()

	resp := get(t, e, "/download/8f1e02e1-0000-0000-0000-000000000000")
	defer resp.Body.Close()
	assert.Equal(t, http.StatusNotFound, resp.StatusCode)
}

func TestDownloadExpired(t *testing.T) {
	e, cleanup := setup()
	defer cleanup()

	file := seedExpired(t, e, "expired-1")

	resp := get(t, e, "/download/"+file.ID)
	defer resp.Body.Close()
	assert.Equal(t, http.StatusGone, resp.StatusCode)

	// An expired download does not count.
	found, err := e.Database.FindFile(file.ID)
	require.NoError(t, err)
	assert.EqualValues(t, 0, found.DownloadCount)
}
