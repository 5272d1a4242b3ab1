// Package utils holds the loose conversions used on request input.
//
// Consent values reach the server as JSON bools, numbers or strings and as
// query parameters; ParseBool accepts the recognized spellings and reports
// anything else so handlers can answer 400. ToBool and ToInt are the lenient
// forms used for optional flags and limits.
package utils
