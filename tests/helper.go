package tests

import (
	"bytes"
	"context"
	"encoding/json"
	"io"
	"mime/multipart"
	"net/http"
	"net/http/httptest"
	"net/textproto"
	"os"
	"regexp"
	"testing"
	"time"

	"github.com/Amvnn/QuickShare/internal/database"
	"github.com/Amvnn/QuickShare/internal/model"
	"github.com/Amvnn/QuickShare/internal/registry"
	"github.com/Amvnn/QuickShare/internal/storage"
	"github.com/Amvnn/QuickShare/internal/webserver"
	"github.com/mdouchement/logger"
	"github.com/sirupsen/logrus"
	"github.com/stretchr/testify/require"
)

type env struct {
	URL      string
	Database database.Client
	Storage  storage.Backend
	Registry *registry.Registry
}

func setup() (*env, func()) {
	log := logrus.New()
	log.SetFormatter(&logger.LogrusTextFormatter{
		DisableColors:   false,
		ForceColors:     true,
		ForceFormatting: true,
		PrefixRE:        regexp.MustCompile(`^(\[.*?\])\s`),
		FullTimestamp:   true,
		TimestampFormat: "2006-01-02 15:04:05",
	})

	//

	dbname, err := os.CreateTemp(os.TempDir(), "quickshare.db.")
	if err != nil {
		panic(err)
	}

	db, err := database.StormOpen(dbname.Name())
	if err != nil {
		panic(err)
	}

	//

	workspace, err := os.MkdirTemp(os.TempDir(), "quickshare.")
	if err != nil {
		panic(err)
	}

	backend := storage.NewFileSystem(workspace)

	//

	reg := registry.New(logger.WrapLogrus(log), db, backend, registry.Config{
		MaxSize:      1 << 20,
		DefaultTTL:   24 * time.Hour,
		AllowedTypes: []string{"text/plain", "application/pdf", "image/png"},
	})

	ctrl := webserver.Controller{
		Version:  "test",
		Logger:   logger.WrapLogrus(log),
		Registry: reg,
		BaseURL:  "http://quickshare.test",
	}
	engine := webserver.EchoEngine(ctrl)

	server := httptest.NewUnstartedServer(engine)
	server.Config.ReadTimeout = 20 * time.Second
	server.Config.WriteTimeout = 20 * time.Second
	server.Start()

	//

	e := &env{
		URL:      server.URL,
		Database: db,
		Storage:  backend,
		Registry: reg,
	}

	return e, func() {
		server.Close()
		db.Close()
		dbname.Close()

		os.RemoveAll(dbname.Name())
		os.RemoveAll(workspace)
	}
}

// upload posts the content as a multipart form and returns the response.
func upload(t *testing.T, e *env, filename, contentType, content, expiresInHours string) *http.Response {
	t.Helper()

	var body bytes.Buffer
	form := multipart.NewWriter(&body)

	header := make(textproto.MIMEHeader)
	header.Set("Content-Disposition", `form-data; name="file"; filename="`+filename+`"`)
	header.Set("Content-Type", contentType)
	part, err := form.CreatePart(header)
	require.NoError(t, err)
	_, err = part.Write([]byte(content))
	require.NoError(t, err)

	if expiresInHours != "" {
		require.NoError(t, form.WriteField("expiresInHours", expiresInHours))
	}
	require.NoError(t, form.Close())

	resp, err := http.Post(e.URL+"/upload", form.FormDataContentType(), &body)
	require.NoError(t, err)
	return resp
}

// get issues a GET without transparent gzip so Content-Length survives.
func get(t *testing.T, e *env, path string) *http.Response {
	t.Helper()

	req, err := http.NewRequest(http.MethodGet, e.URL+path, nil)
	require.NoError(t, err)
	req.Header.Set("Accept-Encoding", "identity")

	resp, err := http.DefaultClient.Do(req)
	require.NoError(t, err)
	return resp
}

// payload decodes the JSON body and returns its data object.
func payload(t *testing.T, resp *http.Response) map[string]interface{} {
	t.Helper()
	defer resp.Body.Close()

	var document map[string]interface{}
	require.NoError(t, json.NewDecoder(resp.Body).Decode(&document))

	data, ok := document["data"].(map[string]interface{})
	require.True(t, ok, "missing data object: %v", document)
	return data
}

// farFuture is late enough for ExpiredFiles to list every record.
func farFuture() time.Time {
	return time.Now().UTC().Add(1000 * time.Hour)
}

// seedExpired plants a blob and its already-expired record.
func seedExpired(t *testing.T, e *env, id string) *model.File {
	t.Helper()
	ctx := context.Background()

	file := &model.File{
		OriginalName: "old.txt",
		StorageKey:   id + ".txt",
		ContentType:  "text/plain",
		Size:         10,
		ExpiresAt:    time.Now().UTC().Add(-time.Hour),
	}
	file.SetID(id)

	wc, err := e.Storage.Writer(ctx, file.StorageKey)
	require.NoError(t, err)
	_, err = io.Copy(wc, bytes.NewReader([]byte("0123456789")))
	require.NoError(t, err)
	require.NoError(t, wc.Close())

	require.NoError(t, e.Database.CreateFile(file))
	return file
}
