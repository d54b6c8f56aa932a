package server

import (
	"io"
	"strings"

	"github.com/labstack/echo/v4"

	"github.com/covera-app/covera/internal/common"
	"github.com/covera-app/covera/internal/services/documents"
)

type uploads struct {
	max int64
}

// read pulls the multipart "file" field into memory, enforcing the size cap.
func (u uploads) read(c echo.Context) (documents.Upload, error) {
	fh, err := c.FormFile("file")
	if err != nil {
		return documents.Upload{}, common.InvalidInput("multipart field \"file\" is required")
	}
	if fh.Size > u.max {
		return documents.Upload{}, tooLarge(u.max)
	}
	f, err := fh.Open()
	if err != nil {
		return documents.Upload{}, common.InvalidInput("read upload: %v", err)
	}
	defer f.Close()

	b, err := io.ReadAll(io.LimitReader(f, u.max+1))
	if err != nil {
		return documents.Upload{}, common.InvalidInput("read upload: %v", err)
	}
	if int64(len(b)) > u.max {
		return documents.Upload{}, tooLarge(u.max)
	}
	return documents.Upload{
		Filename: fh.Filename,
		MimeType: fh.Header.Get(echo.HeaderContentType),
		Bytes:    b,
		Path:     strings.TrimSpace(c.FormValue("path")),
	}, nil
}
