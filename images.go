package adminpanel

import (
	"errors"
	"fmt"
	"net/http"

	"github.com/labstack/echo/v4"

	"github.com/eringen/adminpanel/media"
)

// errNoFile is returned when the form carries no file under the field.
var errNoFile = errors.New("no image file provided")

// readUpload reads and normalizes the file posted as field.
func readUpload(c echo.Context, field string) (media.Upload, error) {
	file, err := c.FormFile(field)
	if err != nil {
		if errors.Is(err, http.ErrMissingFile) {
			return media.Upload{}, errNoFile
		}
		return media.Upload{}, fmt.Errorf("read upload: %w", err)
	}
	if file.Size > media.MaxUploadSize {
		return media.Upload{}, media.ErrTooLarge
	}

	src, err := file.Open()
	if err != nil {
		return media.Upload{}, err
	}
	defer src.Close()

	return media.Process(src, file.Filename)
}
