package extract

import (
	"errors"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

type pushResolver struct {
	name  string
	value string
}

func (r *pushResolver) Name() string { return r.name }

func (r *pushResolver) Resolve(_ *struct{}, output *[]string) error {
	*output = append(*output, r.value)
	return nil
}

type failResolver struct{}

func (r *failResolver) Name() string { return "failResolver" }

func (r *failResolver) Resolve(_ *struct{}, _ *[]string) error {
	return errors.New("fail")
}

func TestResolverChain_AppliesStepsInOrder(t *testing.T) {
	chain := NewResolverChain[struct{}, []string]().
		With(&pushResolver{name: "first", value: "first"}).
		With(&pushResolver{name: "second", value: "second"})

	var ctx struct{}
	var output []string
	require.NoError(t, chain.Apply(&ctx, &output))
	assert.Equal(t, []string{"first", "second"}, output)
}

func TestResolverChain_UsesCustomStepNameInErrors(t *testing.T) {
	chain := NewResolverChain[struct{}, []string]().WithNamed("custom", &failResolver{})

	var ctx struct{}
	var output []string
	err := chain.Apply(&ctx, &output)
	var resolverErr *ResolverError
	require.ErrorAs(t, err, &resolverErr)
	assert.Equal(t, "custom", resolverErr.Step)
	assert.Equal(t, `resolver step "custom" failed: fail`, err.Error())
}
