package sqlexec

// SingleStatement reports whether statement holds at most one SQL statement.
// A trailing semicolon is allowed; a semicolon outside string literals that
// is followed by more text starts a second statement. Literals are scanned
// both with and without backslash escapes, so the answer holds for MariaDB
// and for Postgres and SQLite alike.
func SingleStatement(statement string) bool {
	return singleStatement(statement, true) && singleStatement(statement, false)
}

func singleStatement(statement string, backslashEscapes bool) bool {
	terminated := false

	for i := 0; i < len(statement); i++ {
		switch ch := statement[i]; ch {
		case ' ', '\t', '\n', '\r':
		case ';':
			terminated = true
		case '\'', '"', '`':
			if terminated {
				return false
			}
			i = closingQuote(statement, i, ch, backslashEscapes && ch != '`')
		default:
			if terminated {
				return false
			}
		}
	}

	return true
}

// closingQuote returns the index of the quote closing the literal opened at
// start, or len(statement) when the literal never closes.
func closingQuote(statement string, start int, quote byte, backslashEscapes bool) int {
	for i := start + 1; i < len(statement); i++ {
		switch statement[i] {
		case '\\':
			if backslashEscapes {
				i++
			}
		case quote:
			if i+1 < len(statement) && statement[i+1] == quote {
				i++
				continue
			}
			return i
		}
	}
	return len(statement)
}
