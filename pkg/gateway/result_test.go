package gateway

import (
	"testing"

	"github.com/stretchr/testify/require"
)

func TestResult(t *testing.T) {
	t.Parallel()

	ok := Ok([]string{"swim", "piano"})
	require.False(t, ok.Expired())
	v, present := ok.Value()
	require.True(t, present)
	require.Equal(t, []string{"swim", "piano"}, v)

	expired := SessionExpired[[]string]()
	require.True(t, expired.Expired())
	v, present = expired.Value()
	require.False(t, present)
	require.Nil(t, v)
}
