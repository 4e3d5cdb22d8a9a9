package util

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestSanitizeFileName(t *testing.T) {
	got, err := SanitizeFileName("  reports/q1\\orders.csv ")
	require.NoError(t, err)
	assert.Equal(t, "reports_q1_orders.csv", got)

	for _, bad := range []string{"", "   ", "../etc/passwd", "a..b"} {
		_, err := SanitizeFileName(bad)
		assert.Errorf(t, err, "expected %q to be rejected", bad)
	}
}

func TestDispositionName(t *testing.T) {
	assert.Equal(t, "inv_oice_.pdf", DispositionName(`inv"oice;.pdf`))
	assert.Equal(t, "r_sum_.pdf", DispositionName("résumé.pdf"))
	assert.Equal(t, "download", DispositionName("../x"))
}
