package cpu

// HelpText returns the instruction set summary printed by the help opcode.
func HelpText() string {
	return f(`VNPU Instruction Set (v'NIS)
-----REGISTERS------
'A': Register AX
'B': Register BX
-----OPERATIONS-----
'+': Adds X by Y. (Example: '+ A B' adds register AX and BX)
'-': Subtracts X by Y
'*': Multiplies X by Y
'/': Divides X by Y (Note: WILL halt if a division by 0 is attempted)
-----DATA/MOVEMENT--
'M': Moves X into Y (Example: 'M 5 A' moves 5 into register AX)
-----COMPARISON-----
'?': X EQUAL TO Y CHECK expression (Example: '? A B')
'>': X GREATER THAN Y CHECK expression
'<': X LESSER THAN Y CHECK expression
'!': X NOT EQUAL TO Y CHECK expression
------CONTROL-------
'@': Prints X value (Example: '@ A' prints the contents of register AX)
'.': Halts immediately
'H': Prints this help
`)
}
