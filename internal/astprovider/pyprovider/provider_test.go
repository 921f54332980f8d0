package pyprovider

import (
	"testing"

	"github.com/stretchr/testify/require"

	"github.com/standardbeagle/tscallgraph/internal/astprovider"
)

const linearChainSrc = `
def main():
    return helper()

def helper():
    return "done"
`

func TestDeclarationsLinearChain(t *testing.T) {
	p, err := New()
	require.NoError(t, err)

	f, err := p.Parse("main.py", []byte(linearChainSrc))
	require.NoError(t, err)

	decls := p.Declarations(f)
	require.Len(t, decls, 2)
	require.Equal(t, "main", decls[0].Name)
	require.Equal(t, astprovider.DeclFunction, decls[0].Kind)

	sites := p.CallSites(f, decls[0])
	require.Len(t, sites, 1)
	require.Equal(t, "helper", sites[0].CalleeText)
}

const methodSrc = `
class Svc:
    def process(self):
        self.validate()

    def validate(self):
        return True

    def _hidden(self):
        pass
`

func TestMethodDeclarationsHaveOwningClass(t *testing.T) {
	p, err := New()
	require.NoError(t, err)

	f, err := p.Parse("svc.py", []byte(methodSrc))
	require.NoError(t, err)

	decls := p.Declarations(f)
	require.Len(t, decls, 3)
	for _, d := range decls {
		require.Equal(t, "Svc", d.OwningClass)
	}
	require.Equal(t, "public", decls[0].Visibility)
	require.Equal(t, "private", decls[2].Visibility)

	sites := p.CallSites(f, decls[0])
	require.Len(t, sites, 1)
	require.Equal(t, "self.validate", sites[0].CalleeText)

	class, ok := p.ReceiverClass(f, decls[0], "self")
	require.True(t, ok)
	require.Equal(t, "Svc", class)
}

const constructSrc = `
def build():
    return Widget()
`

func TestConstructorCallHint(t *testing.T) {
	p, err := New()
	require.NoError(t, err)

	f, err := p.Parse("build.py", []byte(constructSrc))
	require.NoError(t, err)

	decls := p.Declarations(f)
	sites := p.CallSites(f, decls[0])
	require.Len(t, sites, 1)
	require.Equal(t, astprovider.HintConstruct, sites[0].Hint)
}
