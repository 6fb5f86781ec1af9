package controller

import (
	"path"
	"strings"
	"time"

	"github.com/gin-gonic/gin"
	"github.com/google/uuid"

	"shop_admin_v1_202608/internal/apperr"
	"shop_admin_v1_202608/internal/service"
)

// maxUploadSize 单文件上限 10MB
const maxUploadSize = 10 << 20

// allowedUploadExt 仅接受图片
var allowedUploadExt = map[string]bool{
	".jpg":  true,
	".jpeg": true,
	".png":  true,
	".gif":  true,
	".webp": true,
	".svg":  true,
}

// UploadController 图片上传接口
type UploadController struct {
	storage service.Storage
}

func NewUploadController(storage service.Storage) *UploadController {
	return &UploadController{storage: storage}
}

// Upload 上传图片，folder 取 products/categories 等业务前缀
func (ctrl *UploadController) Upload(c *gin.Context) {
	file, err := c.FormFile("file")
	if err != nil {
		badRequest(c, err)
		return
	}
	if file.Size > maxUploadSize {
		fail(c, apperr.Invalidf("file too large: %d bytes", file.Size))
		return
	}

	ext := strings.ToLower(path.Ext(file.Filename))
	if !allowedUploadExt[ext] {
		fail(c, apperr.Invalidf("unsupported file type %q", ext))
		return
	}

	folder := c.DefaultPostForm("folder", "misc")
	folder = strings.Trim(path.Clean(folder), "/.")
	if folder == "" {
		folder = "misc"
	}

	src, err := file.Open()
	if err != nil {
		fail(c, err)
		return
	}
	defer src.Close()

	key := path.Join(folder, time.Now().Format("2006/01"), uuid.NewString()+ext)
	contentType := file.Header.Get("Content-Type")
	if contentType == "" {
		contentType = "application/octet-stream"
	}

	url, err := ctrl.storage.Upload(c.Request.Context(), key, src, contentType)
	if err != nil {
		fail(c, err)
		return
	}
	created(c, gin.H{"key": key, "url": url})
}

// SignedURL 获取私有对象的临时访问地址
func (ctrl *UploadController) SignedURL(c *gin.Context) {
	key := c.Query("key")
	if key == "" {
		fail(c, apperr.Invalidf("key is required"))
		return
	}

	url, err := ctrl.storage.SignedURL(c.Request.Context(), key, 15*time.Minute)
	if err != nil {
		fail(c, err)
		return
	}
	ok(c, gin.H{"url": url})
}

// Delete 删除对象
func (ctrl *UploadController) Delete(c *gin.Context) {
	key := c.Query("key")
	if key == "" {
		fail(c, apperr.Invalidf("key is required"))
		return
	}

	if err := ctrl.storage.Delete(c.Request.Context(), key); err != nil {
		fail(c, err)
		return
	}
	ok(c, nil)
}
