// Copyright (c) 2024 the mandos authors

package mandos

// FileLoader resolves the remainder of a `file:` mini-DSL string into its
// byte contents. It is the collaborator referenced by spec rule 6; no
// implementation lives in this package, callers inject one (typically
// backed by os.ReadFile, see cmd/mandosctl).
type FileLoader func(path string) ([]byte, error)

// Digest is a reserved collaborator for a future `keccak256:` prefix. The
// string interpreter never calls it today (rule 4.1.3 rejects the prefix
// with Unsupported unconditionally); it exists purely so callers have a
// typed seam to fill in once the prefix is implemented.
type Digest func(data []byte) []byte

// InterpreterContext holds the read-only collaborators a single lowering
// pass needs. It is safe to share a *InterpreterContext across concurrent
// lowerings of distinct scenarios (see spec §5); nothing here is mutated
// after construction.
type InterpreterContext struct {
	Files FileLoader
	Hash  Digest
}

// NewContext returns a context with no collaborators injected. Strings
// using the `file:` prefix will fail with Unsupported until Files is set.
func NewContext() *InterpreterContext {
	return &InterpreterContext{}
}
