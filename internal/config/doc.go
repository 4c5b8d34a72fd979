// Package config defines the format-agnostic definition of a graph document,
// the Loader interface implemented by concrete document formats, and the
// application settings file.
//
// The `config.Model` is the single source of truth for building a
// `document.Memory`. Concrete loaders, such as the HCL one, live in separate
// packages and only translate their syntax into this model. Declared
// connections are kept apart from the nodes so that callers can replay them
// through the edge manager, which validates every one of them.
package config
