// Package imageproc decodes, letterboxes, segments and re-encodes images.
//
// PNG, JPEG, GIF, BMP and TIFF come from imaging. WEBP decoding is always
// available; WEBP encoding needs an encoder installed with RegisterEncoder,
// which importing imgharvest/pkg/imageproc/webp does.
package imageproc
