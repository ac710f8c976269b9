package cpu

import "testing"

func TestConditionEQ(t *testing.T) {
	s := Status{Zero: true}
	if !s.Condition(0b0000) {
		t.Fatal("EQ should hold when Z is set")
	}
	if s.Condition(0b0001) {
		t.Fatal("NE should not hold when Z is set")
	}
}

func TestConditionGTandLE(t *testing.T) {
	s := Status{Zero: false, Negative: true, Overflow: true}
	if !s.Condition(0b1100) { // GT: !Z && N==V
		t.Fatal("GT should hold when N==V and Z clear")
	}
	s.Zero = true
	if !s.Condition(0b1101) { // LE: Z || N!=V
		t.Fatal("LE should hold when Z is set")
	}
}

func TestAPSRRoundtrip(t *testing.T) {
	s := Status{Negative: true, Zero: false, Carry: true, Overflow: false}
	var s2 Status
	s2.SetAPSR(s.APSR())
	if s2 != s {
		t.Fatalf("APSR roundtrip mismatch: got %+v, want %+v", s2, s)
	}
}

func TestPrivileged(t *testing.T) {
	if !Privileged(Handler, Control{NPriv: true}) {
		t.Fatal("Handler mode is always privileged")
	}
	if Privileged(Thread, Control{NPriv: true}) {
		t.Fatal("Thread mode with nPRIV set should be unprivileged")
	}
	if !Privileged(Thread, Control{NPriv: false}) {
		t.Fatal("Thread mode with nPRIV clear should be privileged")
	}
}
