package csprovider

import (
	"testing"

	"github.com/stretchr/testify/require"

	"github.com/standardbeagle/tscallgraph/internal/astprovider"
)

const methodSrc = `
public class Svc {
  public void Process() {
    this.Validate();
  }

  private bool Validate() {
    return true;
  }
}
`

func TestMethodDeclarationsHaveOwningClass(t *testing.T) {
	p, err := New()
	require.NoError(t, err)

	f, err := p.Parse("svc.cs", []byte(methodSrc))
	require.NoError(t, err)

	decls := p.Declarations(f)
	require.Len(t, decls, 2)
	require.Equal(t, "Svc", decls[0].OwningClass)
	require.Equal(t, "public", decls[0].Visibility)
	require.Equal(t, "private", decls[1].Visibility)

	sites := p.CallSites(f, decls[0])
	require.Len(t, sites, 1)
	require.Equal(t, "this.Validate", sites[0].CalleeText)

	class, ok := p.ReceiverClass(f, decls[0], "this")
	require.True(t, ok)
	require.Equal(t, "Svc", class)
}

const constructSrc = `
public class Factory {
  public Widget Build() {
    return new Widget();
  }
}
`

func TestConstructorCallHint(t *testing.T) {
	p, err := New()
	require.NoError(t, err)

	f, err := p.Parse("factory.cs", []byte(constructSrc))
	require.NoError(t, err)

	decls := p.Declarations(f)
	require.Len(t, decls, 1)
	sites := p.CallSites(f, decls[0])
	require.Len(t, sites, 1)
	require.Equal(t, astprovider.HintConstruct, sites[0].Hint)
	require.Equal(t, "Widget", sites[0].CalleeText)
}

const awaitSrc = `
public class Svc {
  public async Task Process() {
    await HelperAsync();
  }

  private async Task HelperAsync() {
    return;
  }
}
`

func TestAwaitedCallIsAsyncHint(t *testing.T) {
	p, err := New()
	require.NoError(t, err)

	f, err := p.Parse("async.cs", []byte(awaitSrc))
	require.NoError(t, err)

	decls := p.Declarations(f)
	require.True(t, decls[0].Async)

	sites := p.CallSites(f, decls[0])
	require.Len(t, sites, 1)
	require.Equal(t, astprovider.HintAwait, sites[0].Hint)
}
