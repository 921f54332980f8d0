package tsprovider

import (
	"testing"

	"github.com/stretchr/testify/require"

	"github.com/standardbeagle/tscallgraph/internal/astprovider"
)

const linearChainSrc = `
function main() {
  return helper();
}

function helper() {
  return "done";
}
`

func TestDeclarationsLinearChain(t *testing.T) {
	p, err := New()
	require.NoError(t, err)

	f, err := p.Parse("main.ts", []byte(linearChainSrc))
	require.NoError(t, err)

	decls := p.Declarations(f)
	require.Len(t, decls, 2)
	require.Equal(t, "main", decls[0].Name)
	require.Equal(t, astprovider.DeclFunction, decls[0].Kind)
	require.Equal(t, "helper", decls[1].Name)
}

func TestCallSitesLinearChain(t *testing.T) {
	p, err := New()
	require.NoError(t, err)

	f, err := p.Parse("main.ts", []byte(linearChainSrc))
	require.NoError(t, err)

	decls := p.Declarations(f)
	sites := p.CallSites(f, decls[0])
	require.Len(t, sites, 1)
	require.Equal(t, "helper", sites[0].CalleeText)
	require.Equal(t, astprovider.HintNone, sites[0].Hint)
}

const instanceMethodSrc = `
class Svc {
  process() {
    this.validate();
  }

  validate() {
    return true;
  }
}
`

func TestMethodDeclarationsHaveOwningClass(t *testing.T) {
	p, err := New()
	require.NoError(t, err)

	f, err := p.Parse("svc.ts", []byte(instanceMethodSrc))
	require.NoError(t, err)

	decls := p.Declarations(f)
	require.Len(t, decls, 2)
	for _, d := range decls {
		require.Equal(t, "Svc", d.OwningClass)
		require.Equal(t, astprovider.DeclMethod, d.Kind)
	}

	sites := p.CallSites(f, decls[0])
	require.Len(t, sites, 1)
	require.Equal(t, "this.validate", sites[0].CalleeText)

	class, ok := p.ReceiverClass(f, decls[0], "this")
	require.True(t, ok)
	require.Equal(t, "Svc", class)
}

const callbackSrc = `
function main() {
  [1, 2, 3].map(x => x * 2);
}
`

func TestCallbacksDetected(t *testing.T) {
	p, err := New()
	require.NoError(t, err)

	f, err := p.Parse("cb.ts", []byte(callbackSrc))
	require.NoError(t, err)

	decls := p.Declarations(f)
	require.Len(t, decls, 1)

	cbs := p.Callbacks(f, decls[0])
	require.Len(t, cbs, 1)
	require.Equal(t, astprovider.DeclArrow, cbs[0].Kind)
}

const awaitSrc = `
async function main() {
  await asyncHelper();
}

async function asyncHelper() {
  return Promise.resolve(1);
}
`

func TestAwaitedCallIsAsyncHint(t *testing.T) {
	p, err := New()
	require.NoError(t, err)

	f, err := p.Parse("a.ts", []byte(awaitSrc))
	require.NoError(t, err)

	decls := p.Declarations(f)
	require.True(t, decls[0].Async)

	sites := p.CallSites(f, decls[0])
	require.Len(t, sites, 1)
	require.Equal(t, astprovider.HintAwait, sites[0].Hint)
}
