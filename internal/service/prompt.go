package service

import (
	"fmt"
	"strings"
)

const analysisPromptTmpl = `You are a senior site reliability engineer. Analyze the error in the following application log excerpt and give professional advice.

[Raw log context]
%s

Answer these questions based on the log above:
1. What happened (briefly describe the error).
2. How urgent is it (critical/high/medium/low, with a reason).
3. Possible diagnosis path (code, configuration, network, dependencies).
4. Suggested solution (immediate mitigation and long-term fix).

Respond with strict JSON only, no other text. Fields:
{
  "summary": "one sentence",
  "severity": "critical|high|medium|low",
  "diagnosis_path": ["possible cause or check", "..."],
  "solution": {
    "immediate": "action that can be taken right now",
    "long_term": "permanent fix"
  }
}
`

// BuildAnalysisPrompt - 로그 컨텍스트를 넣은 분석 요청 프롬프트 생성
func BuildAnalysisPrompt(contextText string) string {
	return fmt.Sprintf(analysisPromptTmpl, strings.TrimRight(contextText, "\n"))
}
