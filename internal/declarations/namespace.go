package declarations

type Namespace struct {
	base
	children []string
}

func newNamespace(fullName string, children []string) *Namespace {
	return &Namespace{
		base: base{
			kind:     KindNamespace,
			name:     SimpleName(fullName),
			fullName: fullName,
			exported: true,
		},
		children: children,
	}
}

// Children are the simple names of the known child namespaces. Only namespaces of
// opened metadata are listed.
func (n *Namespace) Children() []string {
	return n.children
}

// IsRoot reports the unnamed root namespace
func (n *Namespace) IsRoot() bool {
	return n.fullName == ""
}
