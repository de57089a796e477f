package utils

import (
	"bytes"
	"testing"
)

const testIterations = 1000 // keep the tests fast; production uses a much higher count

func TestCreateAndVerifyPassword(t *testing.T) {
	hash, salt, err := CreatePasswordRecord("correct horse battery staple", testIterations)
	if err != nil {
		t.Fatalf("CreatePasswordRecord: %v", err)
	}
	if len(hash) != 64 {
		t.Errorf("hash length = %d, want 64", len(hash))
	}
	if len(salt) != 16 {
		t.Errorf("salt length = %d, want 16", len(salt))
	}
	if !VerifyPassword("correct horse battery staple", hash, salt, testIterations) {
		t.Error("correct password rejected")
	}
	if VerifyPassword("wrong password", hash, salt, testIterations) {
		t.Error("wrong password accepted")
	}
	if VerifyPassword("correct horse battery staple", hash, salt, testIterations+1) {
		t.Error("mismatched iteration count accepted")
	}
}

func TestCreatePasswordRecordUniqueSalts(t *testing.T) {
	h1, s1, err := CreatePasswordRecord("same password", testIterations)
	if err != nil {
		t.Fatal(err)
	}
	h2, s2, err := CreatePasswordRecord("same password", testIterations)
	if err != nil {
		t.Fatal(err)
	}
	if bytes.Equal(s1, s2) {
		t.Error("two records share a salt")
	}
	if bytes.Equal(h1, h2) {
		t.Error("two records share a hash despite different salts")
	}
}
