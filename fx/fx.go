// Package fx is the SQL function namespace of chsql.
//
// Every argument slot is SQL text unless noted: bare strings are inserted
// verbatim, so column names, composed expressions, parameter placeholders
// such as {name:String} and nested calls compose without quoting. Only the
// character maps of TranslateUTF8 are quoted as data.
//
//	fx.Round(fx.AnyLast("price"), 2).As("price")        // round(anyLast(price), 2) AS price
//	fx.TranslateUTF8("first_name", "ÁáČ", "AaC")         // translateUTF8(first_name, 'ÁáČ', 'AaC')
//	fx.CountDistinct([]string{"created_date", "email"}) // count(DISTINCT created_date, email)
package fx

import "github.com/coregx/chsql/internal/core"

// Func is a SQL function call.
type Func = core.FuncExp

var (
	AnyLast                 = core.AnyLast
	AnyLastPos              = core.AnyLastPos
	Avg                     = core.Avg
	AvgIf                   = core.AvgIf
	Min                     = core.Min
	Max                     = core.Max
	Sum                     = core.Sum
	Abs                     = core.Abs
	Count                   = core.Count
	CountDistinct           = core.CountDistinct
	CountIf                 = core.CountIf
	If                      = core.If
	Round                   = core.Round
	GroupArray              = core.GroupArray
	ArrayJoin               = core.ArrayJoin
	SubtractDays            = core.SubtractDays
	IndexOf                 = core.IndexOf
	Empty                   = core.Empty
	PositionCaseInsensitive = core.PositionCaseInsensitive
	TranslateUTF8           = core.TranslateUTF8

	// Call builds any function by name; see Names for those with a declared signature.
	Call = core.Call
	// Names lists the functions with a declared argument signature.
	Names = core.Functions
)
