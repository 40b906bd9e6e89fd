// Package hclhints serves hint declarations from HCL files instead of a
// database table, so renderers can keep their hints next to their templates
// and under version control.
//
// A declaration file holds renderer blocks, one per (source, render group)
// pair, each with any number of hint blocks:
//
//	renderer "user.created" "email" {
//	  hint "user_id" {
//	    type       = "User"
//	    direct     = ["profile"]
//	    transitive = ["groups"]
//	  }
//	}
//
// Registry parses the files once at construction time and answers
// FetchDeclarations from memory.
package hclhints
