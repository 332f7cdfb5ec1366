package main

import (
	"fmt"

	"github.com/fwojciec/webqa"
)

// Run executes the ask command.
func (c *AskCmd) Run(deps *Dependencies) error {
	result := deps.Answerer.Answer(deps.Ctx, webqa.AnswerRequest{URL: c.URL, Question: c.Question})
	if result == nil {
		result = webqa.Failed(webqa.ReasonQueryError, webqa.Errorf(webqa.EINTERNAL, "answerer returned no result"))
	}
	if !result.Found {
		fmt.Fprintf(deps.Stderr, "error: %s\n", result.Answer)
		if result.Err != nil {
			return result.Err
		}
		return webqa.Errorf(webqa.ENOTFOUND, "%s", result.Answer)
	}

	fmt.Fprintln(deps.Stdout, result.Answer)
	return nil
}
