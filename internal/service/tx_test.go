package service

import "context"

type testTxRepos struct {
	qaLogs   QALogRepositoryInterface
	verified VerifiedAnswerRepositoryInterface
}

func (t *testTxRepos) QALogs() QALogRepositoryInterface {
	return t.qaLogs
}

func (t *testTxRepos) VerifiedAnswers() VerifiedAnswerRepositoryInterface {
	return t.verified
}

type testTxRunner struct {
	repos  TxRepositories
	called bool
}

func (t *testTxRunner) WithTx(ctx context.Context, fn func(repos TxRepositories) error) error {
	t.called = true
	return fn(t.repos)
}
