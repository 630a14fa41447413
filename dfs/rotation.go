package dfs

import "strings"

// MinimalRotation returns the lexicographically smallest rotation of s as a
// new slice (Booth's algorithm, O(n)).
func MinimalRotation(s []string) []string {
	n := len(s)
	if n == 0 {
		return nil
	}
	doubled := make([]string, 0, 2*n)
	doubled = append(append(doubled, s...), s...)

	fail := make([]int, 2*n)
	for i := range fail {
		fail[i] = -1
	}
	k := 0
	for j := 1; j < 2*n; j++ {
		i := fail[j-k-1]
		for i != -1 && doubled[j] != doubled[k+i+1] {
			if doubled[j] < doubled[k+i+1] {
				k = j - i - 1
			}
			i = fail[i]
		}
		if doubled[j] != doubled[k+i+1] {
			// here i == -1
			if doubled[j] < doubled[k] {
				k = j
			}
			fail[j-k] = -1
		} else {
			fail[j-k] = i + 1
		}
	}

	return append([]string(nil), doubled[k:k+n]...)
}

// signature joins a closed loop into a dedup key.
func signature(loop []string) string { return strings.Join(loop, "→") }
