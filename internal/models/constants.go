package models

var (
	TableCheckPromptTemplate = `%s

Analyze the above table and tell me whether it is a proper table or no. Just return 'True' or 'False' based on your decision. I want no other output.`

	TableSerializePromptTemplate = `%s

Read the above table and get each of its records in proper serialized format.`

	SimpleSystemPromptTemplate = `You are a helpful research assistant. Use the provided context to answer the user's question. If the context does not contain enough information to answer, say that you don't know rather than guessing.

Context:
%s`

	ComparativeSystemPromptTemplate = `You are a helpful research assistant. The user's question asks for a comparison across documents. Use the provided context, which contains passages from multiple sources, and compare and contrast the relevant information from each source when answering. If the context does not contain enough information to answer, say that you don't know rather than guessing.

Context:
%s`
)
