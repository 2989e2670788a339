// Package compiler translates Locomotive BASIC (Amstrad CPC) programs into
// JavaScript that runs on a cooperative, resumable runtime.
//
// Pipeline: BASIC source → Normalize → Lex → Parse → Generate → JavaScript
//
// The generated program is a single dispatch loop:
//
//	"use strict";
//	var v = o.vmGetAllVariables();
//	while (o.vmLoopCondition()) {
//	switch (o.line) {
//	case 0:
//	 o.vmGosubLimit(83);
//	 o.goto(10); break;
//	case 10:
//	 ...
//	case "end":
//	 o.vmStop("end", 90); break;
//	default:
//	 o.error(8); o.goto("end"); break;
//	}
//	}
//
// The runtime object o provides:
//
//	o.line                     label the next dispatch iteration enters
//	o.goto(label)              set o.line
//	o.gosub(returnLabel, line) push returnLabel, then goto line
//	o.return()                 pop the return label (Unexpected RETURN if empty)
//	o.vmLoopCondition()        false once the program stops or suspends
//	o.vmGetAllVariables()      the variable object v
//	o.vmRound(x)               round a real to a 16 bit integer
//	o.vmVarName(name[, array]) key of a variable whose type is set by DEFINT & co. at run time
//	o.vmAssign(name, value)    convert value to the run time type of name
//	o.vmGetNextInput(key)      next value collected by INPUT
//	o.vmGosubLimit(n)          maximum GOSUB nesting
//	o.vmTrace(line)            TRON output
//	o.vmStop(reason, priority) stop the loop
//	o.data(line, items...)     register DATA items
//	o.read(key)                next DATA item converted for key
//	o.<keyword>(args...)       one entry point per BASIC command or function
//	o.rsx.<name>(label, args)  RSX extension commands
//
// Commands that may suspend (INPUT, STOP, SOUND, FRAME, ...) get a
// continuation label as their first argument and end the iteration with
// break; the runtime resumes at that label.
package compiler
