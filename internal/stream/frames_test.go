package stream

const (
	frameStart    = "data: {\"type\":\"start\",\"total\":40320}\n\n"
	frameProgress = "data: {\"type\":\"progress\",\"percent\":50,\"current\":20160}\n\n"
	frameLog      = "data: {\"type\":\"log\",\"message\":\"checked 20160 permutations\"}\n\n"
	frameResult   = "data: {\"type\":\"result\"," +
		"\"k1_rank\":[{\"order\":[{\"id\":1,\"name\":\"Mercedes\"},{\"id\":2,\"name\":\"Ferrari\"},{\"id\":3,\"name\":\"McLaren\"}]," +
		"\"distances\":[0,2,2]," +
		"\"expert_stats\":[{\"expert_name\":\"A\",\"input_weight\":1,\"d_rank\":0,\"calculated_competence\":0.6}," +
		"{\"expert_name\":\"B\",\"input_weight\":1,\"d_rank\":2,\"calculated_competence\":0.2}," +
		"{\"expert_name\":\"C\",\"input_weight\":1,\"d_rank\":2,\"calculated_competence\":0.2}]}]," +
		"\"k1_hamming\":[{\"order\":[1,2,3],\"distances\":[0,1,1]},{\"order\":[2,1,3],\"distances\":[1,0,2]}]," +
		"\"criteria\":{\"K1_rank\":4,\"K1_hamming\":2,\"bogus\":1}," +
		"\"inputs\":[{\"name\":\"A\",\"order\":[1,2,3]},{\"name\":\"B\",\"order\":[2,1,3]},{\"expert_name\":\"C\",\"order\":[1,3,2]}]," +
		"\"expert_names\":[\"A\",\"B\",\"C\"],\"execution_time\":1.5}\n\n"
)
