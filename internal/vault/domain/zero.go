package domain

// Zero securely overwrites a byte slice with zeros to clear sensitive data
// (session keys, derived AEAD keys, private key material) from memory before it is
// released to the allocator.
func Zero(b []byte) {
	if b == nil {
		return
	}
	for i := range b {
		b[i] = 0
	}
}
