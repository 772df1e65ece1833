// Package texture decodes mesh textures and draws the viewer's procedural
// textures.
package texture

import (
	"fmt"
	"image"
)

// TGA image types.
const (
	TGATypeTrueColor    = 2
	TGATypeGray         = 3
	TGATypeTrueColorRLE = 10
	TGATypeGrayRLE      = 11
)

type tgaHeader struct {
	idLength     int
	colorMapType byte
	imageType    byte
	width        int
	height       int
	bpp          int
	topToBottom  bool
}

func parseTGAHeader(data []byte) (tgaHeader, error) {
	if len(data) < 18 {
		return tgaHeader{}, fmt.Errorf("TGA data too short")
	}
	h := tgaHeader{
		idLength:     int(data[0]),
		colorMapType: data[1],
		imageType:    data[2],
		width:        int(data[12]) | int(data[13])<<8,
		height:       int(data[14]) | int(data[15])<<8,
		bpp:          int(data[16]),
		topToBottom:  data[17]&0x20 != 0,
	}
	if h.colorMapType != 0 {
		return h, fmt.Errorf("color-mapped TGA not supported")
	}
	switch h.imageType {
	case TGATypeTrueColor, TGATypeTrueColorRLE:
		if h.bpp != 24 && h.bpp != 32 {
			return h, fmt.Errorf("unsupported TGA bit depth %d", h.bpp)
		}
	case TGATypeGray, TGATypeGrayRLE:
		if h.bpp != 8 {
			return h, fmt.Errorf("unsupported grayscale TGA bit depth %d", h.bpp)
		}
	default:
		return h, fmt.Errorf("unsupported TGA type %d", h.imageType)
	}
	if h.width == 0 || h.height == 0 {
		return h, fmt.Errorf("empty TGA image")
	}
	return h, nil
}

// DecodeTGA decodes true-color and grayscale TGA images, raw or RLE.
func DecodeTGA(data []byte) (*image.RGBA, error) {
	h, err := parseTGAHeader(data)
	if err != nil {
		return nil, err
	}
	offset := 18 + h.idLength
	if offset > len(data) {
		return nil, fmt.Errorf("TGA data truncated")
	}

	src := data[offset:]
	bpp := h.bpp / 8
	rle := h.imageType == TGATypeTrueColorRLE || h.imageType == TGATypeGrayRLE
	img := image.NewRGBA(image.Rect(0, 0, h.width, h.height))

	total := h.width * h.height
	put := func(idx int, px []byte) {
		x, y := idx%h.width, idx/h.width
		if !h.topToBottom {
			y = h.height - 1 - y
		}
		o := img.PixOffset(x, y)
		switch bpp {
		case 1:
			img.Pix[o], img.Pix[o+1], img.Pix[o+2], img.Pix[o+3] = px[0], px[0], px[0], 255
		case 3:
			img.Pix[o], img.Pix[o+1], img.Pix[o+2], img.Pix[o+3] = px[2], px[1], px[0], 255
		case 4:
			img.Pix[o], img.Pix[o+1], img.Pix[o+2], img.Pix[o+3] = px[2], px[1], px[0], px[3]
		}
	}

	if !rle {
		if len(src) < total*bpp {
			return nil, fmt.Errorf("TGA pixel data truncated")
		}
		for i := 0; i < total; i++ {
			put(i, src[i*bpp:])
		}
		return img, nil
	}

	// RLE: each packet header holds a repeat flag and a 7-bit count.
	pos, idx := 0, 0
	for idx < total {
		if pos >= len(src) {
			return nil, fmt.Errorf("TGA RLE data truncated at pixel %d", idx)
		}
		packet := src[pos]
		pos++
		count := int(packet&0x7F) + 1
		repeat := packet&0x80 != 0

		for i := 0; i < count && idx < total; i++ {
			if pos+bpp > len(src) {
				return nil, fmt.Errorf("TGA RLE data truncated at pixel %d", idx)
			}
			put(idx, src[pos:])
			idx++
			if !repeat {
				pos += bpp
			}
		}
		if repeat {
			pos += bpp
		}
	}
	return img, nil
}
