// Package server is the HTTP edge of the API process.
//
// Three routes: document submission, the worker's signed completion
// callback, and hybrid search. Tagged application errors are translated to
// HTTP status codes in one middleware; handlers never pick status codes for
// failures themselves.
package server
