// package ui implements the interactive recommendation browser launched by
// `resonate browse`.
package ui
