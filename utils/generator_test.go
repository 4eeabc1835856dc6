package utils

import (
	"regexp"
	"testing"

	"github.com/stretchr/testify/assert"
)

var txRefPattern = regexp.MustCompile(`^BOOKPAY-[0-9A-F]{12}$`)

func TestBuildTxRef(t *testing.T) {
	ref := BuildTxRef(TxRefPrefix)
	assert.Regexp(t, txRefPattern, ref)
}

func TestBuildTxRefDefaultsPrefix(t *testing.T) {
	ref := BuildTxRef("")
	assert.Regexp(t, txRefPattern, ref)
}

func TestBuildTxRefIsUnique(t *testing.T) {
	seen := make(map[string]bool)
	for i := 0; i < 100; i++ {
		ref := BuildTxRef(TxRefPrefix)
		assert.False(t, seen[ref], "duplicate tx_ref generated: %s", ref)
		seen[ref] = true
	}
}
