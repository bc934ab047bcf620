package models

import (
	"encoding/base64"
	"fmt"
	"path/filepath"
	"strings"
)

// Photo upload constraints shared by the client transport and the ingestion endpoint.
const (
	MaxPhotoBytes = int64(5 << 20) // before base64 encoding
	PhotoField    = "photo"
)

// AllowedPhotoTypes maps accepted MIME types to their canonical extension.
var AllowedPhotoTypes = map[string]string{
	"image/jpeg": ".jpg",
	"image/jpg":  ".jpg",
	"image/png":  ".png",
	"image/gif":  ".gif",
}

// AllowedPhotoExtensions lists accepted file name extensions.
var AllowedPhotoExtensions = map[string]bool{
	".jpg":  true,
	".jpeg": true,
	".png":  true,
	".gif":  true,
}

// CheckPhoto validates a photo's declared type, file name and size.
func CheckPhoto(fileName, contentType string, size int64) error {
	mime := strings.ToLower(strings.TrimSpace(contentType))
	if _, ok := AllowedPhotoTypes[mime]; !ok {
		return &UploadError{Reason: fmt.Sprintf("unsupported content type %q", contentType)}
	}
	if fileName != "" && !AllowedPhotoExtensions[strings.ToLower(filepath.Ext(fileName))] {
		return &UploadError{Reason: fmt.Sprintf("unsupported file extension in %q", fileName)}
	}
	if size > MaxPhotoBytes {
		return &UploadError{Reason: fmt.Sprintf("file is %d bytes, limit is %d", size, MaxPhotoBytes)}
	}
	if size == 0 {
		return &UploadError{Reason: "file is empty"}
	}
	return nil
}

// DataURI renders data as a base64 data URI with the given MIME type.
func DataURI(contentType string, data []byte) string {
	return "data:" + contentType + ";base64," + base64.StdEncoding.EncodeToString(data)
}

// DecodeDataURI validates an inlined photo and returns its MIME type and bytes.
func DecodeDataURI(uri string) (*Photo, error) {
	rest, ok := strings.CutPrefix(uri, "data:")
	if !ok {
		return nil, &UploadError{Reason: "photo is not a data URI"}
	}
	mime, payload, ok := strings.Cut(rest, ";base64,")
	if !ok {
		return nil, &UploadError{Reason: "photo data URI is not base64"}
	}
	if int64(base64.StdEncoding.DecodedLen(len(payload))) > MaxPhotoBytes+2 {
		return nil, &UploadError{Reason: fmt.Sprintf("photo is larger than %d bytes", MaxPhotoBytes)}
	}
	data, err := base64.StdEncoding.DecodeString(payload)
	if err != nil {
		return nil, &UploadError{Reason: fmt.Sprintf("photo data URI payload: %v", err)}
	}
	if err := CheckPhoto("", mime, int64(len(data))); err != nil {
		return nil, err
	}
	return &Photo{ContentType: mime, Data: data}, nil
}

// Photo is a decoded inline photo.
type Photo struct {
	ContentType string
	Data        []byte
}
