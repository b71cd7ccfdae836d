package webserver

import (
	"fmt"
	"io"
	"net/http"
	"strconv"
	"time"

	"github.com/Amvnn/QuickShare/internal/registry"
	"github.com/Amvnn/QuickShare/internal/webserver/serializer"
	"github.com/Amvnn/QuickShare/internal/webserver/weberror"
	"github.com/labstack/echo/v4"
	"github.com/mdouchement/logger"
)

type file struct {
	logger   logger.Logger
	registry *registry.Registry
	baseurl  string
}

func (h *file) Upload(c echo.Context) error {
	c.Set("handler_method", "file.Upload")

	fh, err := c.FormFile("file")
	if err != nil {
		return weberror.New(http.StatusBadRequest, "no file uploaded")
	}

	var ttl time.Duration
	if raw := c.FormValue("expiresInHours"); raw != "" {
		hours, err := strconv.Atoi(raw)
		if err != nil {
			return weberror.New(http.StatusBadRequest, "expiresInHours must be an integer")
		}
		ttl = time.Duration(hours) * time.Hour
	}

	src, err := fh.Open()
	if err != nil {
		return weberror.New(http.StatusInternalServerError, err.Error())
	}
	defer src.Close()

	content, err := io.ReadAll(src)
	if err != nil {
		return weberror.New(http.StatusInternalServerError, err.Error())
	}

	contentType := fh.Header.Get(echo.HeaderContentType)
	if contentType == "" {
		contentType = echo.MIMEOctetStream
	}

	admitted, err := h.registry.Admit(c.Request().Context(), content, fh.Filename, contentType, fh.Size, ttl)
	if err != nil {
		return httpError(err)
	}

	return c.JSON(http.StatusCreated, serializer.Upload(admitted, h.baseurl))
}

func (h *file) Download(c echo.Context) error {
	c.Set("handler_method", "file.Download")

	download, r, err := h.registry.Fetch(c.Request().Context(), c.Param("id"))
	if err != nil {
		return httpError(err)
	}
	defer r.Close()

	c.Response().Header().Set(echo.HeaderContentLength, strconv.FormatInt(download.Size, 10))
	c.Response().Header().Set(echo.HeaderContentDisposition, fmt.Sprintf(`attachment; filename=%q`, download.OriginalName))
	c.Response().Header().Set("Etag", download.Checksum)
	return c.Stream(http.StatusOK, download.ContentType, r)
}

func (h *file) Status(c echo.Context) error {
	c.Set("handler_method", "file.Status")

	status, err := h.registry.Status(c.Request().Context(), c.Param("id"))
	if err != nil {
		return httpError(err)
	}

	return c.JSON(http.StatusOK, serializer.Status(status, h.baseurl, time.Now().UTC()))
}

// httpError translates the registry's typed errors into HTTP statuses.
func httpError(err error) error {
	switch {
	case registry.IsAdmission(err):
		return weberror.New(http.StatusBadRequest, err.Error())
	case registry.IsNotFound(err):
		return weberror.New(http.StatusNotFound, "The requested file does not exist")
	case registry.IsExpired(err):
		return weberror.New(http.StatusGone, "This file has expired and is no longer available")
	default:
		return weberror.New(http.StatusInternalServerError, err.Error())
	}
}
