package cms

import (
	"regexp"
	"strconv"
)

// Asset 是解引用后的图片资源。
type Asset struct {
	ID  string `json:"_id,omitempty"`
	URL string `json:"url"`
}

// Hotspot 描述图片焦点区域。
type Hotspot struct {
	X      float64 `json:"x"`
	Y      float64 `json:"y"`
	Height float64 `json:"height"`
	Width  float64 `json:"width"`
}

// Crop 描述图片裁剪比例。
type Crop struct {
	Top    float64 `json:"top"`
	Bottom float64 `json:"bottom"`
	Left   float64 `json:"left"`
	Right  float64 `json:"right"`
}

// Image 对应 CMS image 字段的查询投影。
type Image struct {
	Asset   *Asset   `json:"asset,omitempty"`
	Alt     string   `json:"alt,omitempty"`
	Caption string   `json:"caption,omitempty"`
	Hotspot *Hotspot `json:"hotspot,omitempty"`
	Crop    *Crop    `json:"crop,omitempty"`
}

// URL 返回资源地址，图片缺失时为空串。
func (img *Image) URL() string {
	if img == nil || img.Asset == nil {
		return ""
	}
	return img.Asset.URL
}

// Dimensions 是从资源 ID 中解析出的原始尺寸。
type Dimensions struct {
	Width       int
	Height      int
	AspectRatio float64
}

var assetDimensionPattern = regexp.MustCompile(`-(\d+)x(\d+)-`)

// ImageDimensions 解析 image-<hash>-<w>x<h>-<ext> 形式的资源 ID。
func ImageDimensions(img *Image) (Dimensions, bool) {
	if img == nil || img.Asset == nil || img.Asset.ID == "" {
		return Dimensions{}, false
	}
	matches := assetDimensionPattern.FindStringSubmatch(img.Asset.ID)
	if len(matches) != 3 {
		return Dimensions{}, false
	}
	width, errW := strconv.Atoi(matches[1])
	height, errH := strconv.Atoi(matches[2])
	if errW != nil || errH != nil || width <= 0 || height <= 0 {
		return Dimensions{}, false
	}
	return Dimensions{
		Width:       width,
		Height:      height,
		AspectRatio: float64(width) / float64(height),
	}, true
}
