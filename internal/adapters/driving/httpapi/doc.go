// Package httpapi exposes the question-answering pipeline over HTTP.
// It is a driving adapter: handlers translate between JSON and the
// driving port interfaces, and hold no logic of their own.
package httpapi
