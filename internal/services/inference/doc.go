// Package inference proxies the image-analysis service: text-area and panel
// detection, batch OCR, and the inpainting variants.
//
// Every operation posts a JSON body to <apiUrl><suffix> and returns the
// decoded response untouched.
package inference
