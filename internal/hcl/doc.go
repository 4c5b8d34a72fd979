// Package hcl provides the concrete HCL implementation of the `config.Loader`
// interface. It parses document files, translates `type`, `node` and
// `connect` blocks into the format-agnostic `config.Model`, and turns HCL type
// expressions into cty types, resolving user-declared names through a
// `typesys.Catalog`.
//
// A document looks like:
//
//	type "celsius" {
//	  implements = ["number"]
//	}
//
//	node "sensor" {
//	  type = "read_sensor"
//	  flow_out "then" {}
//	  output "reading" { type = celsius }
//	}
//
//	node "show" {
//	  type = "print"
//	  flow_in "exec" {}
//	  input "text" {
//	    type    = string
//	    accepts = [string, number]
//	    default = "-"
//	  }
//	}
//
//	connect {
//	  from = "sensor.then"
//	  to   = "show.exec"
//	}
package hcl
