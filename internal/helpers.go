// Package internal holds helpers shared by the gowinrt commands.
package internal

// PanicOnError panics if given a non-nil error.
// Use it only where an error means a programming mistake, never for bad input.
func PanicOnError(err error) {
	if err != nil {
		panic(err)
	}
}
