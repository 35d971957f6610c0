// Package images 将记录中的图片引用解析为本地文件路径。
// 解析失败不是错误：调用方得到 ok=false，排版阶段会保留占位框。
package images

import (
	"context"
	"crypto/sha1"
	"encoding/hex"
	"fmt"
	"image"
	_ "image/gif"
	_ "image/jpeg"
	_ "image/png"
	"io"
	"net/http"
	"os"
	"path"
	"path/filepath"
	"regexp"
	"strings"
	"sync"
	"time"

	_ "golang.org/x/image/bmp"
	_ "golang.org/x/image/webp"
)

const defaultTimeout = 10 * time.Second

// DriveDownloadURL 是公开分享文件的直链模板，%s 为文件 id。
const DriveDownloadURL = "https://drive.google.com/uc?export=download&id=%s"

var driveIDPatterns = []*regexp.Regexp{
	regexp.MustCompile(`/d/([a-zA-Z0-9_-]+)`),
	regexp.MustCompile(`id=([a-zA-Z0-9_-]+)`),
}

// Cache 记录一次生成过程中每个引用的解析结果（包括失败结果）。
// 生命周期与一次运行相同，不做淘汰。
type Cache struct {
	mu      sync.Mutex
	entries map[string]cacheEntry
}

type cacheEntry struct {
	path string
	ok   bool
}

// NewCache 创建空缓存。
func NewCache() *Cache {
	return &Cache{entries: map[string]cacheEntry{}}
}

func (c *Cache) get(ref string) (cacheEntry, bool) {
	c.mu.Lock()
	defer c.mu.Unlock()
	e, ok := c.entries[ref]
	return e, ok
}

func (c *Cache) put(ref string, e cacheEntry) {
	c.mu.Lock()
	defer c.mu.Unlock()
	c.entries[ref] = e
}

// Len 返回已缓存的引用数量。
func (c *Cache) Len() int {
	c.mu.Lock()
	defer c.mu.Unlock()
	return len(c.entries)
}

// Options 配置解析器。
type Options struct {
	BaseDir  string       // 相对路径的基准目录
	CacheDir string       // 远程图片的下载目录，为空时使用临时目录
	Client   *http.Client // 为空时使用带超时的默认客户端
	Cache    *Cache       // 为空时新建
	// DriveURL 覆盖 Google Drive 直链模板，主要用于测试。
	DriveURL string
}

// Resolver 支持本地路径、http(s) 链接与 Google Drive 分享链接。
type Resolver struct {
	baseDir  string
	cacheDir string
	client   *http.Client
	cache    *Cache
	driveURL string

	dirOnce sync.Once
	dirErr  error
}

// NewResolver 创建解析器。
func NewResolver(opts Options) *Resolver {
	r := &Resolver{
		baseDir:  opts.BaseDir,
		cacheDir: opts.CacheDir,
		client:   opts.Client,
		cache:    opts.Cache,
		driveURL: opts.DriveURL,
	}
	if r.client == nil {
		r.client = &http.Client{Timeout: defaultTimeout}
	}
	if r.cache == nil {
		r.cache = NewCache()
	}
	if r.driveURL == "" {
		r.driveURL = DriveDownloadURL
	}
	return r
}

// Resolve 实现 layout.ImageResolver。
func (r *Resolver) Resolve(ref string) (string, bool) {
	ref = strings.TrimSpace(ref)
	if ref == "" {
		return "", false
	}
	if e, ok := r.cache.get(ref); ok {
		return e.path, e.ok
	}
	p, err := r.resolve(context.Background(), ref)
	e := cacheEntry{path: p, ok: err == nil && p != ""}
	r.cache.put(ref, e)
	return e.path, e.ok
}

func (r *Resolver) resolve(ctx context.Context, ref string) (string, error) {
	switch {
	case strings.Contains(ref, "drive.google.com"):
		id := DriveFileID(ref)
		if id == "" {
			return "", fmt.Errorf("无法从 %s 提取文件 id", ref)
		}
		return r.download(ctx, fmt.Sprintf(r.driveURL, id), id)
	case strings.HasPrefix(ref, "http://"), strings.HasPrefix(ref, "https://"):
		return r.download(ctx, ref, "")
	default:
		p := ref
		if !filepath.IsAbs(p) && r.baseDir != "" {
			p = filepath.Join(r.baseDir, p)
		}
		info, err := os.Stat(p)
		if err != nil {
			return "", err
		}
		if info.IsDir() {
			return "", fmt.Errorf("%s 是目录", p)
		}
		return p, nil
	}
}

func (r *Resolver) download(ctx context.Context, url, name string) (string, error) {
	dir, err := r.ensureCacheDir()
	if err != nil {
		return "", err
	}
	req, err := http.NewRequestWithContext(ctx, http.MethodGet, url, nil)
	if err != nil {
		return "", err
	}
	resp, err := r.client.Do(req)
	if err != nil {
		return "", fmt.Errorf("下载图片 %s 失败: %w", url, err)
	}
	defer resp.Body.Close()
	if resp.StatusCode != http.StatusOK {
		return "", fmt.Errorf("下载图片 %s 失败: HTTP %d", url, resp.StatusCode)
	}

	if name == "" {
		sum := sha1.Sum([]byte(url))
		name = hex.EncodeToString(sum[:8])
	}
	ext := path.Ext(path.Base(strings.SplitN(url, "?", 2)[0]))
	if ext == "" || len(ext) > 5 {
		ext = ".img"
	}
	target := filepath.Join(dir, name+ext)
	f, err := os.Create(target)
	if err != nil {
		return "", err
	}
	if _, err := io.Copy(f, resp.Body); err != nil {
		f.Close()
		return "", fmt.Errorf("写入图片缓存失败: %w", err)
	}
	if err := f.Close(); err != nil {
		return "", err
	}
	return target, nil
}

func (r *Resolver) ensureCacheDir() (string, error) {
	r.dirOnce.Do(func() {
		if r.cacheDir == "" {
			r.cacheDir, r.dirErr = os.MkdirTemp("", "folio-images-")
			return
		}
		r.dirErr = os.MkdirAll(r.cacheDir, 0o755)
	})
	return r.cacheDir, r.dirErr
}

// DriveFileID 从 Google Drive 分享链接中提取文件 id。
func DriveFileID(url string) string {
	for _, p := range driveIDPatterns {
		if m := p.FindStringSubmatch(url); len(m) > 1 {
			return m[1]
		}
	}
	return ""
}

// Decode 读取并解码图片文件，支持 png/jpeg/gif/bmp/webp。
func Decode(p string) (image.Image, error) {
	f, err := os.Open(p)
	if err != nil {
		return nil, fmt.Errorf("读取图片 %s 失败: %w", p, err)
	}
	defer f.Close()
	img, _, err := image.Decode(f)
	if err != nil {
		return nil, fmt.Errorf("解码图片 %s 失败: %w", p, err)
	}
	return img, nil
}
