// Package fetch downloads league exports published by URL.
//
// Requests are retried with a constant delay on network errors and server
// errors. Compressed responses (gzip, deflate, brotli) are decoded before the
// bytes are handed to the loader.
package fetch
