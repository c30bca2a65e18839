package file

import (
	"bytes"
	"context"
	"errors"
	"fmt"
	"image"
	_ "image/jpeg" // Import for JPEG decoding support
	"image/png"
	"io"
	"path"
	"path/filepath"
	"slices"
	"strings"
	"time"

	"github.com/google/uuid"
	"github.com/timepay/timepay-backend/internal/pkg/storage"
	"golang.org/x/image/draw"
)

// AvatarSize is the edge length of stored avatars in pixels.
const AvatarSize = 256

var (
	ErrInvalidFileType = errors.New("invalid file type")
	ErrInvalidImage    = errors.New("file is not a readable image")
)

var (
	imageExts    = []string{".jpg", ".jpeg", ".png"}
	documentExts = []string{".pdf", ".jpg", ".jpeg", ".png", ".doc", ".docx"}
)

type FileService interface {
	// UploadAvatar stores a square AvatarSize PNG and returns its public URL.
	UploadAvatar(ctx context.Context, employeeID string, file io.Reader, filename string) (string, error)
	UploadDocument(ctx context.Context, employeeID string, file io.Reader, filename string, documentType string) (string, error)
	UploadLeaveAttachment(ctx context.Context, employeeID string, file io.Reader, filename string) (string, error)
}

type fileServiceImpl struct {
	storage storage.FileStorage
	now     func() time.Time
}

func NewFileService(storage storage.FileStorage) FileService {
	return &fileServiceImpl{
		storage: storage,
		now:     time.Now,
	}
}

func contentType(ext string) string {
	switch ext {
	case ".png":
		return "image/png"
	case ".jpg", ".jpeg":
		return "image/jpeg"
	case ".pdf":
		return "application/pdf"
	}
	return "application/octet-stream"
}

func (s *fileServiceImpl) put(ctx context.Context, file io.Reader, key, ext string) (string, error) {
	stored, err := s.storage.Upload(ctx, file, key, contentType(ext))
	if err != nil {
		return "", err
	}
	return s.storage.GetURL(ctx, stored, 0)
}

// UploadAvatar center-crops the image to a square and scales it down.
func (s *fileServiceImpl) UploadAvatar(ctx context.Context, employeeID string, file io.Reader, filename string) (string, error) {
	ext := strings.ToLower(filepath.Ext(filename))
	if !slices.Contains(imageExts, ext) {
		return "", fmt.Errorf("%w: only jpg, jpeg, png allowed", ErrInvalidFileType)
	}

	src, _, err := image.Decode(file)
	if err != nil {
		return "", ErrInvalidImage
	}

	var buf bytes.Buffer
	if err := png.Encode(&buf, squareThumbnail(src, AvatarSize)); err != nil {
		return "", fmt.Errorf("failed to encode avatar: %w", err)
	}

	key := path.Join("avatars", employeeID, uuid.NewString()+".png")
	url, err := s.put(ctx, &buf, key, ".png")
	if err != nil {
		return "", fmt.Errorf("failed to upload avatar: %w", err)
	}
	return url, nil
}

// UploadDocument implements FileService.
func (s *fileServiceImpl) UploadDocument(ctx context.Context, employeeID string, file io.Reader, filename string, documentType string) (string, error) {
	ext := strings.ToLower(filepath.Ext(filename))
	if !slices.Contains(documentExts, ext) {
		return "", fmt.Errorf("%w: only pdf, images and word documents allowed", ErrInvalidFileType)
	}

	key := path.Join("documents", employeeID, fmt.Sprintf("%s-%s%s", slug(documentType), uuid.NewString(), ext))
	url, err := s.put(ctx, file, key, ext)
	if err != nil {
		return "", fmt.Errorf("failed to upload document: %w", err)
	}
	return url, nil
}

// UploadLeaveAttachment implements FileService.
func (s *fileServiceImpl) UploadLeaveAttachment(ctx context.Context, employeeID string, file io.Reader, filename string) (string, error) {
	ext := strings.ToLower(filepath.Ext(filename))
	if !slices.Contains(documentExts, ext) {
		return "", fmt.Errorf("%w: only pdf, images and word documents allowed", ErrInvalidFileType)
	}

	key := path.Join("leave", employeeID, fmt.Sprintf("%s-%d%s", uuid.NewString(), s.now().Unix(), ext))
	url, err := s.put(ctx, file, key, ext)
	if err != nil {
		return "", fmt.Errorf("failed to upload leave attachment: %w", err)
	}
	return url, nil
}

func slug(s string) string {
	s = strings.ToLower(strings.TrimSpace(s))
	var b strings.Builder
	for _, r := range s {
		switch {
		case r >= 'a' && r <= 'z', r >= '0' && r <= '9':
			b.WriteRune(r)
		case r == ' ', r == '-', r == '_':
			b.WriteByte('-')
		}
	}
	if b.Len() == 0 {
		return "document"
	}
	return b.String()
}

// squareThumbnail crops the centered square of src and scales it to size x size.
func squareThumbnail(src image.Image, size int) image.Image {
	b := src.Bounds()
	edge := min(b.Dx(), b.Dy())
	x0 := b.Min.X + (b.Dx()-edge)/2
	y0 := b.Min.Y + (b.Dy()-edge)/2
	crop := image.Rect(x0, y0, x0+edge, y0+edge)

	dst := image.NewRGBA(image.Rect(0, 0, size, size))
	// CatmullRom gives the best downscaling quality of the x/image kernels.
	draw.CatmullRom.Scale(dst, dst.Bounds(), src, crop, draw.Over, nil)
	return dst
}
