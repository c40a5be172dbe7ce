// Package barcode provides a pluggable interface for barcode decoding.
//
// The default backend is built on gozxing and decodes every symbology listed
// in Format. Callers that need rotation or inversion retries wrap a backend
// with NewVariantBackend; NewBackend returns that composition.
//
// Crop rectangles carried in Options are applied by the caller through
// ApplyCrop before Decode is invoked. Backends always receive the final
// pixel region.
package barcode
