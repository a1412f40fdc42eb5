package jitson_test

import (
	"fmt"

	"github.com/sxeproject/jitson"
)

func Example() {
	doc, err := jitson.ParseString(`{"name":"John Doe","tags":["tag1","tag2"]}`, jitson.Strict)
	if err != nil {
		fmt.Println("parse error:", err)
		return
	}
	fmt.Println(doc.Root().String())
	// Output: {"name":"John Doe","tags":["tag1","tag2"]}
}
