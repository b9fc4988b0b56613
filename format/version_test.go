package format

import "testing"

func TestUnityVersionOrdering(t *testing.T) {
	a := ParseUnityVersion("2018.3.0")
	b := ParseUnityVersion("2018.3.1")
	c := ParseUnityVersion("2019.1.0a")

	if !a.Less(b) {
		t.Fatalf("expected %s < %s", a, b)
	}
	if !b.Less(c) {
		t.Fatalf("expected %s < %s", b, c)
	}
	if a.Compare(a) != 0 {
		t.Fatalf("expected %s == %s", a, a)
	}
}

func TestUnityVersionParse(t *testing.T) {
	v := ParseUnityVersion("2019.4.1f1")
	if v.Numbers != [3]int{2019, 4, 1} || v.BuildType != 'f' || v.BuildNum != 1 {
		t.Fatalf("unexpected parse result: %+v", v)
	}
}

func TestClassIDString(t *testing.T) {
	if ClassTexture2D.String() != "Texture2D" {
		t.Fatalf("expected Texture2D, got %s", ClassTexture2D)
	}
	if ClassID(9999).String() == "" {
		t.Fatalf("unknown class id should still stringify")
	}
}
