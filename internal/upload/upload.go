package upload

import (
	"errors"         // Sentinel errors
	"mime/multipart" // Uploaded file headers
	"os"             // Filesystem operations
	"path/filepath"  // Path handling
	"strings"        // Extension normalization

	"github.com/gin-gonic/gin"   // Gin web framework
	"github.com/google/uuid"     // Unique stored filenames
	"github.com/sirupsen/logrus" // Logging library
)

// LogoURLPrefix is the public path prefix stored in the database and served
// statically by the gateway
const LogoURLPrefix = "/uploads/party-flags/"

// MaxLogoSize caps uploaded logo files at 5 MB
const MaxLogoSize = 5 << 20

// Validation failures, mapped to 400 at the handler boundary
var (
	ErrInvalidType = errors.New("logo must be an image file (png, jpg, jpeg, gif, svg, webp)")
	ErrTooLarge    = errors.New("logo file too large (max 5MB)")
)

// allowedExts lists the accepted logo file extensions
var allowedExts = map[string]bool{
	".png":  true,
	".jpg":  true,
	".jpeg": true,
	".gif":  true,
	".svg":  true,
	".webp": true,
}

// Store saves and removes party logo files under a base upload directory
type Store struct {
	Dir string // Base upload directory
}

// NewStore creates the party-flags directory and returns a Store
func NewStore(dir string) (*Store, error) {
	if err := os.MkdirAll(filepath.Join(dir, "party-flags"), 0o755); err != nil {
		return nil, err
	}
	return &Store{Dir: dir}, nil
}

// SaveLogo validates and stores an uploaded logo, returning the public path
// string that gets persisted on the party record
func (s *Store) SaveLogo(c *gin.Context, fh *multipart.FileHeader) (string, error) {
	ext := strings.ToLower(filepath.Ext(fh.Filename)) // Normalize the extension
	if !allowedExts[ext] {
		return "", ErrInvalidType // Reject non-image uploads
	}
	if fh.Size > MaxLogoSize {
		return "", ErrTooLarge // Reject oversized uploads
	}
	name := uuid.NewString() + ext // Unique stored filename
	dst := filepath.Join(s.Dir, "party-flags", name)
	if err := c.SaveUploadedFile(fh, dst); err != nil {
		return "", err // Filesystem failure, surfaced as 500
	}
	return LogoURLPrefix + name, nil
}

// Remove deletes a stored logo by its public path. Best-effort: a failed
// delete is logged, never surfaced to the caller.
func (s *Store) Remove(logoPath string) {
	if logoPath == "" {
		return
	}
	// Only the filename is trusted from the stored path
	full := filepath.Join(s.Dir, "party-flags", filepath.Base(logoPath))
	if err := os.Remove(full); err != nil && !os.IsNotExist(err) {
		logrus.WithFields(logrus.Fields{
			"path":  full,        // File we tried to delete
			"error": err.Error(), // Filesystem error
		}).Warn("Failed to delete logo file")
	}
}

// IsValidationErr reports whether the error is an upload validation failure
func IsValidationErr(err error) bool {
	return errors.Is(err, ErrInvalidType) || errors.Is(err, ErrTooLarge)
}
