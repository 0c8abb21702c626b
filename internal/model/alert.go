// 감지된 알림 구조체 정의
// monitor, service, client 레이어에서 공통으로 사용하기 때문에 model 레이어에 별도로 정의

package model

import "time"

// Alert - 키워드 매칭으로 감지되어 중복 검사를 통과한 알림 1건
// 파이프라인을 한 번 통과하고 버려지는 값 (장기 저장 대상 아님)
type Alert struct {
	// ID: 로그 추적용 고유 식별자 (uuid)
	ID string `json:"alert_id"`

	// Source: 알림이 발생한 로그 파일 경로
	Source string `json:"source"`

	// Trigger: 키워드에 매칭된 줄
	Trigger string `json:"trigger"`

	// Keyword: 매칭된 키워드 (설정에 적힌 표기)
	Keyword string `json:"keyword"`

	// Context: 매칭 줄 전후 줄을 개행으로 이어붙인 문자열
	Context string `json:"context"`

	DetectedAt time.Time `json:"detected_at"`
}
