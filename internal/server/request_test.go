package server

import (
	"bytes"
	"io"
	"mime/multipart"
	"net/http/httptest"
	"net/url"
	"strings"
	"testing"

	"github.com/stretchr/testify/require"
)

func TestParseRequest_Query(t *testing.T) {
	r := httptest.NewRequest("GET",
		"/connector?cmd=open&target=v1_abc0&init=1&tree=1", nil)

	req, err := parseRequest(r)
	require.NoError(t, err)
	require.Equal(t, "open", req.Cmd)
	require.Equal(t, "v1_abc0", req.Target)
	require.True(t, req.Init)
	require.True(t, req.Tree)
	require.False(t, req.Cut)
}

func TestParseRequest_MissingCmd(t *testing.T) {
	r := httptest.NewRequest("GET", "/connector?target=v1_abc0", nil)
	_, err := parseRequest(r)
	require.Error(t, err)
}

func TestParseRequest_Form(t *testing.T) {
	form := url.Values{}
	form.Set("cmd", "paste")
	form.Set("dst", "v1_dst0")
	form.Add("targets[]", "v1_one0")
	form.Add("targets[]", "v1_two0")
	form.Set("cut", "1")

	r := httptest.NewRequest("POST", "/connector", strings.NewReader(form.Encode()))
	r.Header.Set("Content-Type", "application/x-www-form-urlencoded")

	req, err := parseRequest(r)
	require.NoError(t, err)
	require.Equal(t, "paste", req.Cmd)
	require.Equal(t, "v1_dst0", req.Dst)
	require.Equal(t, []string{"v1_one0", "v1_two0"}, req.Targets)
	require.True(t, req.Cut)
}

func TestParseRequest_Geometry(t *testing.T) {
	r := httptest.NewRequest("GET",
		"/connector?cmd=resize&target=v1_abc0&mode=crop&width=40&height=20&x=5&y=6&degree=90", nil)

	req, err := parseRequest(r)
	require.NoError(t, err)
	require.Equal(t, "crop", req.Mode)
	require.Equal(t, 40, req.Width)
	require.Equal(t, 20, req.Height)
	require.Equal(t, 5, req.X)
	require.Equal(t, 6, req.Y)
	require.Equal(t, 90, req.Degrees)
}

func TestParseRequest_Multipart(t *testing.T) {
	var body bytes.Buffer
	w := multipart.NewWriter(&body)
	require.NoError(t, w.WriteField("cmd", "upload"))
	require.NoError(t, w.WriteField("target", "v1_dir0"))

	part, err := w.CreateFormFile("upload[]", "hello.txt")
	require.NoError(t, err)
	_, err = part.Write([]byte("hello world"))
	require.NoError(t, err)

	part, err = w.CreateFormFile("upload[]", "second.txt")
	require.NoError(t, err)
	_, err = part.Write([]byte("x"))
	require.NoError(t, err)
	require.NoError(t, w.Close())

	r := httptest.NewRequest("POST", "/connector", &body)
	r.Header.Set("Content-Type", w.FormDataContentType())

	req, err := parseRequest(r)
	require.NoError(t, err)
	require.Equal(t, "upload", req.Cmd)
	require.Equal(t, "v1_dir0", req.Target)
	require.Len(t, req.Uploads, 2)
	require.Equal(t, "hello.txt", req.Uploads[0].Name)
	require.Equal(t, int64(11), req.Uploads[0].Size)

	f, err := req.Uploads[0].Open()
	require.NoError(t, err)
	defer f.Close()
	data, err := io.ReadAll(f)
	require.NoError(t, err)
	require.Equal(t, "hello world", string(data))
}

func TestParseRequest_MimeFilter(t *testing.T) {
	r := httptest.NewRequest("GET", "/connector?cmd=ls&target=v1_abc0&mimes[]=image", nil)

	req, err := parseRequest(r)
	require.NoError(t, err)
	require.Equal(t, "image", req.MimeFilter)
}
