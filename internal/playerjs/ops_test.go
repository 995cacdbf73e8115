package playerjs

import (
	"errors"
	"testing"

	"github.com/famomatic/ytx/internal/types"
)

// sigFixture carries the classic transform-table shape: an actions object
// plus a dispatch function that splits, transforms and rejoins.
const sigFixture = `var Xr={Dx:function(a,b){a.splice(0,b)},pA:function(a,b){var c=a[0];a[0]=a[b%a.length];a[b%a.length]=c},wG:function(a){a.reverse()}};
var zx=function(q){q=q.split("");Xr.Dx(q,2);Xr.pA(q,1);Xr.wG(q);return q.join("")};`

const nFixture = `Wka=function(a){var b=a.split("");b.push("x");return b.join("")};
var misc=function(c){c.D&&(b=c.get("n"))&&(b=Wka(b),c.set("n",b))};`

func TestFallbackSignature(t *testing.T) {
	got, err := newFallback(sigFixture).Solve(KindSig, "abcdef")
	if err != nil {
		t.Fatalf("Solve: %v", err)
	}
	// splice 2, swap 1, reverse.
	if got != "fecd" {
		t.Fatalf("sig = %q, want %q", got, "fecd")
	}
}

func TestFallbackSignatureTableMissing(t *testing.T) {
	_, err := newFallback("var player;").Solve(KindSig, "abcdef")
	if !errors.Is(err, types.ErrDecipher) {
		t.Fatalf("err = %v, want ErrDecipher", err)
	}
}

func TestFallbackN(t *testing.T) {
	got, err := newFallback(nFixture).Solve(KindN, "12345")
	if err != nil {
		t.Fatalf("Solve: %v", err)
	}
	if got != "12345x" {
		t.Fatalf("n = %q, want %q", got, "12345x")
	}
}

func TestFallbackNFunctionMissing(t *testing.T) {
	_, err := newFallback("var player;").Solve(KindN, "12345")
	if !errors.Is(err, types.ErrDecipher) {
		t.Fatalf("err = %v, want ErrDecipher", err)
	}
}

func TestFallbackUnknownKind(t *testing.T) {
	_, err := newFallback(sigFixture).Solve("po", "x")
	if !errors.Is(err, types.ErrDecipher) {
		t.Fatalf("err = %v, want ErrDecipher", err)
	}
}
