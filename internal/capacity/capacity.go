// Package capacity picks hash-table capacities. Sizes come from a fixed table
// of primes chosen to roughly double at each step; requests beyond the table
// fall back to a primality scan.
package capacity

// preferred is the ascending table of capacities. Each entry is prime so that
// bucket selection by modulus spreads clustered hashes.
var preferred = []int{
	3, 7, 11, 17, 23, 29, 37, 47, 59, 71, 89, 107, 131, 163, 197, 239,
	293, 353, 431, 521, 631, 761, 919, 1103, 1327, 1597, 1931, 2333,
	2801, 3371, 4049, 4861, 5839, 7013, 8419, 10103, 12143, 14591,
	17519, 21023, 25229, 30293, 36353, 43627, 52361, 62851, 75431,
	90523, 108631, 130363, 156437, 187751, 225307, 270371, 324449,
	389357, 467237, 560689, 672827, 807403, 968897, 1162687, 1395263,
	1674319, 2009191, 2411033, 2893249, 3471899, 4166287, 4999559,
	5999471, 7199369,
}

// Next returns the smallest preferred capacity that is at least min. Above
// the tabulated range it returns the first prime found scanning ascending odd
// integers.
func Next(min int) int {
	for _, p := range preferred {
		if p >= min {
			return p
		}
	}
	for n := min | 1; ; n += 2 {
		if isPrime(n) {
			return n
		}
	}
}

// isPrime trial-divides an odd candidate by odd divisors up to its square
// root. Callers only pass values above the preferred table, so small cases
// need no special handling.
func isPrime(n int) bool {
	for d := 3; d*d <= n; d += 2 {
		if n%d == 0 {
			return false
		}
	}
	return true
}
