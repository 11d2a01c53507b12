package qr

import (
	"encoding/base64"
	"fmt"

	qrcode "github.com/skip2/go-qrcode"
)

const pngSize = 300

// DataURL 把入场 token 编码成 PNG 二维码的 data URL，前端可直接渲染。
func DataURL(data string) (string, error) {
	if data == "" {
		return "", fmt.Errorf("qr data is empty")
	}
	png, err := qrcode.Encode(data, qrcode.Medium, pngSize)
	if err != nil {
		return "", fmt.Errorf("failed to encode qr: %w", err)
	}
	return "data:image/png;base64," + base64.StdEncoding.EncodeToString(png), nil
}
