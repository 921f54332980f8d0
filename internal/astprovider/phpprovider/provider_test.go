package phpprovider

import (
	"testing"

	"github.com/stretchr/testify/require"

	"github.com/standardbeagle/tscallgraph/internal/astprovider"
)

const linearChainSrc = `<?php
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

	f, err := p.Parse("main.php", []byte(linearChainSrc))
	require.NoError(t, err)

	decls := p.Declarations(f)
	require.Len(t, decls, 2)
	require.Equal(t, "main", decls[0].Name)

	sites := p.CallSites(f, decls[0])
	require.Len(t, sites, 1)
	require.Equal(t, "helper", sites[0].CalleeText)
}

const methodSrc = `<?php
class Svc {
  public function process() {
    $this->validate();
  }

  private function validate() {
    return true;
  }
}
`

func TestMethodDeclarationsHaveOwningClass(t *testing.T) {
	p, err := New()
	require.NoError(t, err)

	f, err := p.Parse("svc.php", []byte(methodSrc))
	require.NoError(t, err)

	decls := p.Declarations(f)
	require.Len(t, decls, 2)
	require.Equal(t, "Svc", decls[0].OwningClass)
	require.Equal(t, "public", decls[0].Visibility)
	require.Equal(t, "private", decls[1].Visibility)

	sites := p.CallSites(f, decls[0])
	require.Len(t, sites, 1)
	require.Equal(t, "$this->validate", sites[0].CalleeText)

	class, ok := p.ReceiverClass(f, decls[0], "$this")
	require.True(t, ok)
	require.Equal(t, "Svc", class)
}

const constructSrc = `<?php
function build() {
  return new Widget();
}
`

func TestConstructorCallHint(t *testing.T) {
	p, err := New()
	require.NoError(t, err)

	f, err := p.Parse("build.php", []byte(constructSrc))
	require.NoError(t, err)

	decls := p.Declarations(f)
	sites := p.CallSites(f, decls[0])
	require.Len(t, sites, 1)
	require.Equal(t, astprovider.HintConstruct, sites[0].Hint)
	require.Equal(t, "Widget", sites[0].CalleeText)
}
