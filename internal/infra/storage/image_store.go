package storage

import (
	"errors"
	"fmt"
	"io"
	"os"
	"path"
	"path/filepath"
	"regexp"
	"strings"

	"github.com/google/uuid"
)

var ErrUnsupportedImage = errors.New("only png, jpg and jpeg images are accepted")

var allowedExt = map[string]bool{
	".png":  true,
	".jpg":  true,
	".jpeg": true,
}

var unsafeChars = regexp.MustCompile(`[^A-Za-z0-9._-]+`)

// 保存名のファイル名部分の上限。/static/images/<8桁>- を足しても Product.Image の列に収まる長さ
const maxFilenameLength = 64

// 拡張子チェックのみ（中身までは見ない）
func IsAllowedImage(filename string) bool {
	return allowedExt[strings.ToLower(filepath.Ext(filename))]
}

// アップロード画像を <staticDir>/images に保存し、/static/images/... のURLを返す
type LocalImageStore struct {
	dir       string
	urlPrefix string
}

func NewLocalImageStore(staticDir string) *LocalImageStore {
	return &LocalImageStore{
		dir:       filepath.Join(staticDir, "images"),
		urlPrefix: "/static/images",
	}
}

func (s *LocalImageStore) Save(filename string, r io.Reader) (string, error) {
	if !IsAllowedImage(filename) {
		return "", ErrUnsupportedImage
	}
	if err := os.MkdirAll(s.dir, 0o755); err != nil {
		return "", fmt.Errorf("create image dir: %w", err)
	}

	name := uuid.NewString()[:8] + "-" + SanitizeFilename(filename)
	f, err := os.OpenFile(filepath.Join(s.dir, name), os.O_WRONLY|os.O_CREATE|os.O_EXCL, 0o644)
	if err != nil {
		return "", fmt.Errorf("create image: %w", err)
	}
	if _, err := io.Copy(f, r); err != nil {
		_ = f.Close()
		_ = os.Remove(f.Name())
		return "", fmt.Errorf("write image: %w", err)
	}
	if err := f.Close(); err != nil {
		return "", fmt.Errorf("close image: %w", err)
	}

	return path.Join(s.urlPrefix, name), nil
}

// Save が返したURLのファイルを消す。無ければ何もしない
func (s *LocalImageStore) Delete(url string) error {
	name, ok := strings.CutPrefix(url, s.urlPrefix+"/")
	if !ok {
		return fmt.Errorf("image url %q is not under %s", url, s.urlPrefix)
	}
	if name == "" || name == "." || name == ".." || strings.ContainsAny(name, `/\`) {
		return fmt.Errorf("invalid image url %q", url)
	}
	err := os.Remove(filepath.Join(s.dir, name))
	if err != nil && !errors.Is(err, os.ErrNotExist) {
		return fmt.Errorf("delete image: %w", err)
	}
	return nil
}

// ディレクトリ部分と危険な文字を落とし、拡張子を残して maxFilenameLength に切り詰める
func SanitizeFilename(filename string) string {
	base := filepath.Base(strings.ReplaceAll(filename, `\`, "/"))
	base = strings.ReplaceAll(base, " ", "_")
	base = unsafeChars.ReplaceAllString(base, "")
	base = strings.TrimLeft(base, ".")
	if base == "" || strings.HasPrefix(base, ".") {
		return "image"
	}
	if len(base) > maxFilenameLength {
		ext := filepath.Ext(base)
		if len(ext) >= maxFilenameLength {
			ext = ""
		}
		base = base[:maxFilenameLength-len(ext)] + ext
	}
	return base
}
